package queue

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stepsync/cmd/client/cmd/cli"
	"stepsync/internal/app/client"
)

// QueueCmd - родительская команда для локальной очереди
var QueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Локальная очередь неотправленных сабмитов",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Показать очередь",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cli.App(cmd)
		if err != nil {
			return err
		}

		items, err := app.ListQueue(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка чтения очереди: %w", err)
		}

		if cli.JSON(cmd) {
			return cli.PrintJSON(items)
		}
		if len(items) == 0 {
			fmt.Println("Очередь пуста")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tДАТА\tШАГИ\tСТАТУС\tПОПЫТКИ\tОШИБКА")
		for _, it := range items {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\n",
				it.ClientID, it.Input.ForDate, it.Input.Steps, statusText(it.Status), it.RetryCount, it.LastError)
		}
		return w.Flush()
	},
}

func statusText(s client.ItemStatus) string {
	switch s {
	case client.StatusFailed:
		return color.RedString(string(s))
	case client.StatusSynced:
		return color.GreenString(string(s))
	default:
		return string(s)
	}
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Удалить старые отправленные и неудачные элементы",
	Long:  `Неотправленные (pending) элементы не удаляются никогда.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cli.App(cmd)
		if err != nil {
			return err
		}

		n, err := app.PruneQueue(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Удалено элементов: %d\n", n)
		return nil
	},
}

var resubmitCmd = &cobra.Command{
	Use:   "resubmit <client-id>",
	Short: "Поставить неудачный сабмит в очередь заново",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.App(cmd)
		if err != nil {
			return err
		}

		newID, err := app.Resubmit(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Создан новый элемент очереди: %s\n", newID)
		return nil
	},
}

func init() {
	QueueCmd.AddCommand(listCmd, pruneCmd, resubmitCmd)
}
