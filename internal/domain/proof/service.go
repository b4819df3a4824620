package proof

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// MaxSize предельный размер файла доказательства.
const MaxSize = 10 << 20

var (
	ErrEmpty       = errors.New("proof file is empty")
	ErrTooLarge    = errors.New("proof file is too large")
	ErrUnsupported = errors.New("proof must be an image")
)

// Store хранилище байтов доказательства
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

type Servicer interface {
	Upload(ctx context.Context, userID int64, data []byte, contentType string) (string, error)
}

type Service struct {
	store Store
	now   func() time.Time
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		log:   log.With("component", "proof_service"),
	}
}

// Upload сохраняет изображение и возвращает путь, который клиент передает в сабмит.
func (s *Service) Upload(ctx context.Context, userID int64, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if len(data) > MaxSize {
		return "", ErrTooLarge
	}

	sniffed := http.DetectContentType(data)
	if !strings.HasPrefix(sniffed, "image/") {
		s.log.Info("rejected proof upload", "user_id", userID, "declared", contentType, "sniffed", sniffed)
		return "", ErrUnsupported
	}

	key := s.storageKey(userID, sniffed)
	if err := s.store.Put(ctx, key, data, sniffed); err != nil {
		return "", fmt.Errorf("store proof: %w", err)
	}

	s.log.Info("proof uploaded", "user_id", userID, "key", key, "size", len(data))
	return key, nil
}

func (s *Service) storageKey(userID int64, contentType string) string {
	d := s.now().UTC()
	return fmt.Sprintf("proofs/%d/%04d/%02d/%02d/%s%s", userID, d.Year(), d.Month(), d.Day(), uuid.New(), extension(contentType))
}

func extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		return ""
	}
}
