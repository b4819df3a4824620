package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Драйвер pgx для database/sql
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/exp/slog"

	"stepsync/internal/app/server/config"
	"stepsync/internal/infrastructure/migration"
)

type Storage struct {
	db *sql.DB
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Storage, error) {
	db, err := sql.Open("pgx", cfg.DB.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := migration.NewMigration(cfg, migration.DefaultEngine).Up()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	log.Info("database ready", "schema_version", version)

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) DB() *sql.DB {
	return s.db
}
