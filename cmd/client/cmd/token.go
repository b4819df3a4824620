package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"stepsync/cmd/client/cmd/cli"
)

// tokenCmd токен выдает оператор сервера (stepsync-server issue-token).
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Управление токеном доступа",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set <token>",
	Short: "Сохранить токен",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.App(cmd)
		if err != nil {
			return err
		}
		if err := app.SaveToken(args[0]); err != nil {
			return err
		}
		fmt.Println("Токен сохранен")
		return nil
	},
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Удалить сохраненный токен",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := cli.App(cmd)
		if err != nil {
			return err
		}
		if err := app.ClearToken(); err != nil {
			return err
		}
		fmt.Println("Токен удален")
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd, tokenClearCmd)
}
