// Package notify доставляет события сабмитов во внешние системы.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

type Event struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Webhook отправляет события POST запросом в фоне; ошибки только логируются.
type Webhook struct {
	url    string
	client *http.Client
	log    *slog.Logger
	wg     sync.WaitGroup
}

func NewWebhook(url string, timeout time.Duration, log *slog.Logger) *Webhook {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log.With("component", "webhook_notifier"),
	}
}

func (w *Webhook) Publish(ctx context.Context, event string, payload any) {
	body, err := json.Marshal(Event{Type: event, Payload: payload, Timestamp: time.Now().UTC()})
	if err != nil {
		w.log.Error("failed to encode event", "event", event, "error", err)
		return
	}

	// Запрос клиента может завершиться раньше доставки.
	ctx = context.WithoutCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.send(ctx, body); err != nil {
			w.log.Warn("event delivery failed", "event", event, "error", err)
			return
		}
		w.log.Debug("event delivered", "event", event)
	}()
}

// Wait дожидается отправки всех событий, используется при остановке сервера.
func (w *Webhook) Wait() {
	w.wg.Wait()
}

func (w *Webhook) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Nop используется, когда адрес вебхука не настроен.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) {}
