// Package session проверяет bearer токены клиентов. Выдача токенов доступна
// только оператору сервера.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

const DefaultTTL = 30 * 24 * time.Hour

type Servicer interface {
	Create(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	Validate(ctx context.Context, token string) (int64, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "session_service"),
	}
}

func (s *Service) Create(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	token := base64.URLEncoding.EncodeToString(tokenBytes)

	if err := s.repo.Create(ctx, userID, hashToken(token), time.Now().Add(ttl)); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	s.log.Info("session issued", "user_id", userID, "ttl", ttl.String())
	return token, nil
}

// Validate в хранилище лежит только sha256 от токена.
func (s *Service) Validate(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidSession
	}

	return s.repo.Validate(ctx, hashToken(token))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
