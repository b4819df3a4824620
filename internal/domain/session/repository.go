package session

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidSession = errors.New("invalid session")

type Repository interface {
	Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	// Validate возвращает ErrInvalidSession для неизвестного или просроченного токена.
	Validate(ctx context.Context, tokenHash string) (int64, error)
}
