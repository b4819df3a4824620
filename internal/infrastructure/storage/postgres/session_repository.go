package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stepsync/internal/dbx"
	"stepsync/internal/domain/session"
)

type SessionRepository struct {
	db dbx.DBTX
}

func NewSessionRepository(db dbx.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, token_hash, expires_at)
         VALUES ($1, decode($2, 'hex'), $3)`,
		userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SessionRepository) Validate(ctx context.Context, tokenHash string) (int64, error) {
	var userID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM sessions
         WHERE token_hash = decode($1, 'hex') AND expires_at > NOW()`,
		tokenHash).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, session.ErrInvalidSession
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return userID, nil
}
