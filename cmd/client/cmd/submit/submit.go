package submit

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stepsync/cmd/client/cmd/cli"
	"stepsync/internal/domain/submission"
	"stepsync/internal/domain/verification"
)

var (
	forDate   string
	steps     int
	partial   bool
	proofFile string
	proofPath string
	scopeID   int64
)

var SubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Отправить шаги за день",
	Long: `Отправляет количество шагов за дату.

Если сервер недоступен, сабмит сохраняется в локальной очереди и будет
отправлен при следующей синхронизации. Ошибки валидации в очередь не попадают.`,
	Example: `  stepsync submit --date 2025-03-01 --steps 8000
  stepsync submit --date 2025-03-01 --steps 8000 --proof ./screenshot.png --scope 12`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cli.App(cmd)
		if err != nil {
			return err
		}

		in := submission.Input{
			ScopeID: cli.ScopeFlag(scopeID),
			ForDate: forDate,
			Steps:   steps,
			Partial: partial,
		}

		res, err := app.Submit(cmd.Context(), in, proofFile)
		if err != nil {
			var conflictErr *submission.ConflictError
			if errors.As(err, &conflictErr) {
				printConflict(conflictErr.Existing)
			}
			return err
		}

		if cli.JSON(cmd) {
			return cli.PrintJSON(res)
		}

		if res.Queued {
			color.Yellow("Сервер недоступен, сабмит сохранен в очереди (%s)", res.ClientID)
			return nil
		}

		fmt.Printf("Сабмит #%d за %s: %d шагов\n",
			res.Response.Submission.ID, res.Response.Submission.ForDate, res.Response.Submission.Steps)
		if res.Response.Verification != nil {
			printOutcome(*res.Response.Verification)
		}
		return nil
	},
}

func printConflict(existing submission.Snapshot) {
	color.Yellow("На %s уже есть запись: %d шагов", existing.ForDate, existing.Steps)
	fmt.Println("Используйте 'stepsync conflicts resolve' чтобы заменить или оставить ее")
}

func printOutcome(o verification.Outcome) {
	switch o.Kind {
	case verification.KindConfirmed:
		color.Green("Проверка пройдена")
	case verification.KindRateLimited:
		color.Yellow("Сервис проверки перегружен, повторите через %d с", o.RetryAfter)
	default:
		if o.ShouldRetry {
			color.Yellow("Проверка не выполнена (%s): %s. Можно повторить: stepsync verify", o.Code, o.Message)
			return
		}
		color.Red("Проверка отклонена (%s): %s", o.Code, o.Message)
	}
}

func init() {
	SubmitCmd.Flags().StringVarP(&forDate, "date", "d", "", "дата в формате YYYY-MM-DD")
	SubmitCmd.Flags().IntVarP(&steps, "steps", "s", 0, "количество шагов")
	SubmitCmd.Flags().BoolVar(&partial, "partial", false, "день еще не закончился")
	SubmitCmd.Flags().StringVar(&proofFile, "proof", "", "путь к изображению-доказательству")
	SubmitCmd.Flags().Int64Var(&scopeID, "scope", 0, "ID группы или челленджа")
	_ = SubmitCmd.MarkFlagRequired("date")
	_ = SubmitCmd.MarkFlagRequired("steps")
}
