package submit

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stepsync/cmd/client/cmd/cli"
	"stepsync/internal/domain/submission"
)

var VerifyCmd = &cobra.Command{
	Use:   "verify <submission-id>",
	Short: "Повторить проверку сабмита",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.App(cmd)
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("неверный ID сабмита: %w", err)
		}

		in := submission.Input{
			ScopeID: cli.ScopeFlag(scopeID),
			ForDate: forDate,
			Steps:   steps,
		}
		if proofPath != "" {
			in.ProofPath = &proofPath
		}

		outcome, err := app.RetryVerification(cmd.Context(), id, in)
		if err != nil {
			return err
		}

		if cli.JSON(cmd) {
			return cli.PrintJSON(outcome)
		}
		printOutcome(outcome)
		return nil
	},
}

func init() {
	VerifyCmd.Flags().StringVarP(&forDate, "date", "d", "", "дата сабмита в формате YYYY-MM-DD")
	VerifyCmd.Flags().IntVarP(&steps, "steps", "s", 0, "количество шагов")
	VerifyCmd.Flags().StringVar(&proofPath, "proof-path", "", "путь доказательства на сервере")
	VerifyCmd.Flags().Int64Var(&scopeID, "scope", 0, "ID группы или челленджа")
	_ = VerifyCmd.MarkFlagRequired("date")
	_ = VerifyCmd.MarkFlagRequired("steps")
}
