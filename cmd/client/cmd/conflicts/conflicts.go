package conflicts

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stepsync/cmd/client/cmd/cli"
	"stepsync/internal/domain/conflict"
)

var (
	scopeID   int64
	dates     []string
	hasProof  bool
	source    string
	action    string
	steps     int
	proofPath string
	partial   bool
	fromFile  string
)

// ConflictsCmd - родительская команда для проверки и разрешения конфликтов по датам
var ConflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Конфликты с уже сохраненными на сервере записями",
}

var checkCmd = &cobra.Command{
	Use:     "check",
	Short:   "Найти даты, на которые уже есть записи",
	Example: `  stepsync conflicts check --date 2025-03-01 --date 2025-03-02 --has-proof`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cli.App(cmd)
		if err != nil {
			return err
		}

		candidates := make([]conflict.Candidate, 0, len(dates))
		for _, d := range dates {
			candidates = append(candidates, conflict.Candidate{
				Date:     d,
				HasProof: hasProof,
				Source:   conflict.Source(source),
			})
		}

		infos, err := app.CheckConflicts(cmd.Context(), cli.ScopeFlag(scopeID), candidates)
		if err != nil {
			return err
		}

		if cli.JSON(cmd) {
			return cli.PrintJSON(infos)
		}
		if len(infos) == 0 {
			color.Green("Конфликтов нет")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ДАТА\tШАГИ\tДОКАЗАТЕЛЬСТВО\tПРОВЕРЕНО\tРЕКОМЕНДАЦИЯ")
		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%d\t%v\t%v\t%s\n",
				info.Date, info.Existing.Steps, info.Existing.HasProof(), info.Existing.IsVerified(), info.Suggested)
		}
		return w.Flush()
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Применить решения по конфликтующим датам",
	Long: `Каждое решение применяется независимо: ошибка по одной дате
не отменяет остальные. Решения можно передать файлом (--file, JSON-массив)
или одной датой через флаги.`,
	Example: `  stepsync conflicts resolve --date 2025-03-01 --action use_incoming --steps 9000
  stepsync conflicts resolve --file resolutions.json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cli.App(cmd)
		if err != nil {
			return err
		}

		resolutions, err := readResolutions()
		if err != nil {
			return err
		}

		res, err := app.ResolveConflicts(cmd.Context(), cli.ScopeFlag(scopeID), resolutions)
		if err != nil {
			return err
		}

		if cli.JSON(cmd) {
			return cli.PrintJSON(res)
		}

		for _, r := range res.Results {
			mark := color.GreenString("OK")
			if !r.Success {
				mark = color.RedString("FAIL")
			}
			fmt.Printf("%s  %s  %s  %s\n", mark, r.Date, r.Action, r.Message)
		}
		fmt.Printf("Разрешено: %d из %d\n", res.Resolved, len(res.Results))
		return nil
	},
}

func readResolutions() ([]conflict.Resolution, error) {
	if fromFile != "" {
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения файла: %w", err)
		}
		var out []conflict.Resolution
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("ошибка разбора файла: %w", err)
		}
		return out, nil
	}

	if len(dates) != 1 {
		return nil, fmt.Errorf("укажите ровно одну дату (--date) или файл (--file)")
	}

	r := conflict.Resolution{Date: dates[0], Action: conflict.Action(action)}
	if r.Action == conflict.ActionUseIncoming {
		r.Incoming = &conflict.IncomingData{Steps: steps, Partial: partial}
		if proofPath != "" {
			r.Incoming.ProofPath = &proofPath
		}
	}
	return []conflict.Resolution{r}, nil
}

func init() {
	ConflictsCmd.PersistentFlags().Int64Var(&scopeID, "scope", 0, "ID группы или челленджа")
	ConflictsCmd.PersistentFlags().StringSliceVarP(&dates, "date", "d", nil, "дата в формате YYYY-MM-DD (можно несколько)")

	checkCmd.Flags().BoolVar(&hasProof, "has-proof", false, "у входящих данных есть доказательство")
	checkCmd.Flags().StringVar(&source, "source", string(conflict.SourceManual), "источник: extraction или manual")

	resolveCmd.Flags().StringVar(&action, "action", string(conflict.ActionKeepExisting), "keep_existing, use_incoming или skip")
	resolveCmd.Flags().IntVar(&steps, "steps", 0, "шаги для use_incoming")
	resolveCmd.Flags().StringVar(&proofPath, "proof-path", "", "путь доказательства на сервере для use_incoming")
	resolveCmd.Flags().BoolVar(&partial, "partial", false, "неполный день для use_incoming")
	resolveCmd.Flags().StringVar(&fromFile, "file", "", "JSON-файл с решениями")

	ConflictsCmd.AddCommand(checkCmd, resolveCmd)
}
