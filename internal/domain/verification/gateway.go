// Package verification оборачивает внешний сервис проверки доказательств
// и сводит его ответы к трем исходам: confirmed, rate_limited, failed.
package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/exp/slog"
)

// Verifier интерфейс для вызывающих сторон (сервис сабмитов, тесты).
type Verifier interface {
	Verify(ctx context.Context, req Request) Outcome
}

// Request данные, отправляемые на проверку.
type Request struct {
	Steps        int    `json:"steps"`
	ForDate      string `json:"for_date"`
	ProofPath    string `json:"proof_path,omitempty"`
	ScopeID      *int64 `json:"scope_id,omitempty"`
	SubmissionID int64  `json:"submission_id"`
	RequesterID  int64  `json:"requester_id"`
}

// Config параметры подключения к сервису проверки.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Gateway HTTP клиент сервиса проверки.
type Gateway struct {
	client *http.Client
	cfg    Config
	log    *slog.Logger
}

func NewGateway(cfg Config, log *slog.Logger) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Gateway{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		cfg: cfg,
		log: log.With("component", "verification_gateway"),
	}
}

type failureBody struct {
	Code        string `json:"code"`
	Error       string `json:"error"`
	Message     string `json:"message"`
	ShouldRetry *bool  `json:"should_retry"`
	RetryAfter  int    `json:"retry_after"`
}

// Verify никогда не возвращает ошибку: любая проблема транспорта становится failed с should_retry.
func (g *Gateway) Verify(ctx context.Context, req Request) Outcome {
	payload, err := json.Marshal(req)
	if err != nil {
		return Failed(CodeInternal, fmt.Sprintf("marshal request: %v", err), true)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/verify", bytes.NewReader(payload))
	if err != nil {
		return Failed(CodeInternal, fmt.Sprintf("build request: %v", err), true)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		httpReq.Header.Set("X-API-Key", g.cfg.APIKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.log.Warn("verification request failed", "submission_id", req.SubmissionID, "error", err)
		return Failed(CodeInternal, "verification service unavailable", true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Failed(CodeInternal, fmt.Sprintf("read response: %v", err), true)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var res Result
		if err := json.Unmarshal(body, &res); err != nil {
			g.log.Error("undecodable verification response", "submission_id", req.SubmissionID, "error", err)
			return Failed(CodeInternal, "invalid verification response", true)
		}
		return Confirmed(res)

	case resp.StatusCode == http.StatusTooManyRequests:
		var fb failureBody
		_ = json.Unmarshal(body, &fb)
		retryAfter := fb.RetryAfter
		if retryAfter <= 0 {
			retryAfter, _ = strconv.Atoi(resp.Header.Get("Retry-After"))
		}
		g.log.Info("verification rate limited", "submission_id", req.SubmissionID, "retry_after", retryAfter)
		return RateLimited(retryAfter)

	default:
		var fb failureBody
		_ = json.Unmarshal(body, &fb)

		code := fb.Code
		if code == "" {
			code = "http_" + strconv.Itoa(resp.StatusCode)
		}
		message := fb.Message
		if message == "" {
			message = fb.Error
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		shouldRetry := resp.StatusCode >= 500
		if fb.ShouldRetry != nil {
			shouldRetry = *fb.ShouldRetry
		}

		g.log.Info("verification failed",
			"submission_id", req.SubmissionID,
			"status", resp.StatusCode,
			"code", code,
			"should_retry", shouldRetry,
		)
		return Failed(code, message, shouldRetry)
	}
}
