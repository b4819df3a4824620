package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"stepsync/internal/app/server/api"
	"stepsync/internal/app/server/config"
	"stepsync/internal/domain/conflict"
	"stepsync/internal/domain/proof"
	"stepsync/internal/domain/session"
	"stepsync/internal/domain/standings"
	"stepsync/internal/domain/submission"
	"stepsync/internal/domain/verification"
	"stepsync/internal/infrastructure/blob"
	"stepsync/internal/infrastructure/notify"
	"stepsync/internal/infrastructure/storage/postgres"
	"stepsync/internal/utils/logger"
)

func main() {
	root := &cobra.Command{
		Use:   "stepsync-server",
		Short: "Stepsync submission API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(issueTokenCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	cfg := config.MustLoad()
	log := logger.NewWithLevel(cfg.Env, cfg.Logger.LogLevel)

	storage, err := postgres.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer storage.Close()

	store, err := blob.NewS3Store(ctx, blob.S3Config{
		Endpoint:  cfg.S3.Endpoint,
		Region:    cfg.S3.Region,
		Bucket:    cfg.S3.Bucket,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
	}, log)
	if err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}

	var notifier submission.Notifier = notify.Nop{}
	var webhook *notify.Webhook
	if cfg.Notify.WebhookURL != "" {
		webhook = notify.NewWebhook(cfg.Notify.WebhookURL, 5*time.Second, log)
		notifier = webhook
	}

	gateway := verification.NewGateway(verification.Config{
		BaseURL: cfg.Verifier.URL,
		APIKey:  cfg.Verifier.APIKey,
		Timeout: cfg.Verifier.Timeout,
	}, log)

	submissionRepo := postgres.NewSubmissionRepository(storage.DB())
	submissionService := submission.NewService(submissionRepo, gateway, notifier, log)

	services := api.Services{
		Session:    session.NewService(postgres.NewSessionRepository(storage.DB()), log),
		Submission: submissionService,
		Conflict:   conflict.NewService(submissionService, log),
		Proof:      proof.NewService(store, log),
		Standings:  standings.NewService(submissionRepo, log),
	}

	srv := &http.Server{
		Addr:              cfg.Server.RunAddress,
		Handler:           api.New(services, cfg.Server.AllowedOrigins, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", cfg.Server.RunAddress), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if webhook != nil {
		webhook.Wait()
	}

	return nil
}

func issueTokenCmd() *cobra.Command {
	var (
		userID int64
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Issue a bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoad()
			log := logger.NewWithLevel(cfg.Env, cfg.Logger.LogLevel)

			storage, err := postgres.New(cmd.Context(), cfg, log)
			if err != nil {
				return fmt.Errorf("init storage: %w", err)
			}
			defer storage.Close()

			token, err := session.NewService(postgres.NewSessionRepository(storage.DB()), log).
				Create(cmd.Context(), userID, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().DurationVar(&ttl, "ttl", session.DefaultTTL, "token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
