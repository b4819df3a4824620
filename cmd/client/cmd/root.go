package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"stepsync/cmd/client/cmd/cli"
	"stepsync/cmd/client/cmd/conflicts"
	"stepsync/cmd/client/cmd/queue"
	"stepsync/cmd/client/cmd/submit"
	"stepsync/cmd/client/cmd/sync"
	"stepsync/internal/app/client"
	"stepsync/internal/app/client/config"
	"stepsync/internal/utils/logger"
)

var (
	cfgFile   string
	debug     bool
	serverURL string
	app       *client.App
)

var rootCmd = &cobra.Command{
	Use:   "stepsync",
	Short: "stepsync - клиент для отправки шагов с офлайн-очередью",
	Long: `stepsync отправляет дневные шаги на сервер соревнований.

Если сервер недоступен, сабмит сохраняется в локальной очереди
и отправляется автоматически, когда связь восстановится.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	log := logger.NewWithLevel(cfg.Env, level)

	notifier := client.NewConsoleNotifier(os.Stdout, cli.IsTTY())
	app, err = client.New(cfg, log, notifier)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	cmd.SetContext(cli.WithApp(cmd.Context(), app))
	return nil
}

func closeApp(_ *cobra.Command, _ []string) error {
	if app == nil {
		return nil
	}
	return app.Close()
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return config.MustLoad(), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный режим")
	rootCmd.PersistentFlags().Bool("json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера stepsync (host:port)")

	rootCmd.AddCommand(
		submit.SubmitCmd,
		submit.VerifyCmd,
		queue.QueueCmd,
		sync.SyncCmd,
		sync.DaemonCmd,
		conflicts.ConflictsCmd,
		tokenCmd,
	)
}
