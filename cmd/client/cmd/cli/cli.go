// Package cli общие помощники для команд клиента: доступ к App и вывод.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"stepsync/internal/app/client"
)

type appKey struct{}

func WithApp(ctx context.Context, app *client.App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

// App достает приложение, созданное в PersistentPreRunE корневой команды.
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(appKey{}).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

// JSON включен ли вывод в JSON (глобальный флаг --json).
func JSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func PrintJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// IsTTY stdout подключен к терминалу; от этого зависит цветной вывод.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ScopeFlag 0 означает личный зачет.
func ScopeFlag(scope int64) *int64 {
	if scope <= 0 {
		return nil
	}
	return &scope
}
