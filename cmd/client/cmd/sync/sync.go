package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stepsync/cmd/client/cmd/cli"
	"stepsync/internal/app/client"
)

var showStatus bool

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Отправить очередь на сервер",
	Long: `Один проход синхронизации: все ожидающие сабмиты отправляются
по порядку постановки. Если проход уже идет, команда завершится сразу.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cli.App(cmd)
		if err != nil {
			return err
		}

		if showStatus {
			return printStatus(cmd, app)
		}

		if err := app.CheckConnection(cmd.Context()); err != nil {
			color.Yellow("Сервер недоступен, очередь сохранена: %v", err)
			return nil
		}

		summary, err := app.Sync(cmd.Context())
		if errors.Is(err, client.ErrSyncInProgress) {
			color.Yellow("Синхронизация уже идет в другом процессе (например, stepsync daemon)")
			return nil
		}
		if err != nil {
			return fmt.Errorf("ошибка синхронизации: %w", err)
		}

		if cli.JSON(cmd) {
			return cli.PrintJSON(summary)
		}
		// краткий итог печатает ConsoleNotifier
		app.WaitNotifications()
		fmt.Printf("Время выполнения: %v\n", summary.Duration.Round(time.Millisecond))
		return nil
	},
}

func printStatus(cmd *cobra.Command, app *client.App) error {
	items, err := app.ListQueue(cmd.Context())
	if err != nil {
		return err
	}

	counts := map[client.ItemStatus]int{}
	for _, it := range items {
		counts[it.Status]++
	}

	if cli.JSON(cmd) {
		return cli.PrintJSON(counts)
	}

	fmt.Printf("В очереди: %d\n", counts[client.StatusPending])
	fmt.Printf("Неудачных: %d\n", counts[client.StatusFailed])

	fmt.Print("Соединение с сервером: ")
	if err := app.CheckConnection(cmd.Context()); err != nil {
		color.Red("нет (%v)", err)
	} else {
		color.Green("OK")
	}
	return nil
}

var DaemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Фоновый режим: синхронизация при появлении сети",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cli.App(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := app.Run(ctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	},
}

func init() {
	SyncCmd.Flags().BoolVar(&showStatus, "status", false, "показать состояние очереди и соединения")
}
