package client

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

	"stepsync/internal/app/client/config"
	"stepsync/internal/domain/conflict"
	"stepsync/internal/domain/submission"
	"stepsync/internal/domain/verification"
)

// CreateResponse ответ на создание сабмита (201 или 202).
type CreateResponse struct {
	Status       string                 `json:"status"`
	Submission   *submission.Submission `json:"submission"`
	Verification *verification.Outcome  `json:"verification,omitempty"`
}

// apiError покрывает и конверт {status, error}, и модель ошибки huma {title, detail}.
type apiError struct {
	Error    string               `json:"error"`
	Title    string               `json:"title"`
	Detail   string               `json:"detail"`
	Existing *submission.Snapshot `json:"existing"`
}

func (e apiError) message(code int) string {
	switch {
	case e.Error != "":
		return e.Error
	case e.Detail != "":
		return e.Detail
	case e.Title != "":
		return e.Title
	default:
		return http.StatusText(code)
	}
}

type httpClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	token     string
	userAgent string
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) *httpClient {
	client := &http.Client{
		Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 2,
		},
	}

	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}

	return &httpClient{
		client:    client,
		log:       log.With("component", "http_client"),
		baseURL:   scheme + cfg.ServerAddress,
		userAgent: "stepsync-client/1.0",
	}
}

// SetToken устанавливает токен аутентификации
func (h *httpClient) SetToken(token string) {
	h.token = token
}

// Health проверяет доступность сервера
func (h *httpClient) Health(ctx context.Context) error {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/health", nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// CreateSubmission 409 превращается в *submission.ConflictError, 422 в submission.ErrValidation.
func (h *httpClient) CreateSubmission(ctx context.Context, in submission.Input) (*CreateResponse, error) {
	resp, err := h.doJSON(ctx, http.MethodPost, "/api/v1/submissions", in)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusAccepted {
		var out CreateResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("decode create response: %w", err)
		}
		return &out, nil
	}

	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)

	if resp.StatusCode == http.StatusConflict {
		if apiErr.Existing != nil {
			return nil, &submission.ConflictError{Existing: *apiErr.Existing}
		}
		return nil, fmt.Errorf("%w: %s", submission.ErrAlreadyExists, apiErr.message(resp.StatusCode))
	}

	return nil, statusError(resp.StatusCode, apiErr)
}

// UploadProof отправляет изображение как есть и возвращает путь в хранилище.
func (h *httpClient) UploadProof(ctx context.Context, data []byte, contentType string) (string, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/v1/proofs", bytes.NewReader(data), contentType)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, decodeAPIError(resp.Body))
	}

	var out struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return out.Path, nil
}

// RetryVerification 429 и неуспешные проверки приходят как Outcome, а не как ошибка.
func (h *httpClient) RetryVerification(ctx context.Context, id int64, in submission.Input) (verification.Outcome, error) {
	resp, err := h.doJSON(ctx, http.MethodPost, "/api/v1/submissions/"+strconv.FormatInt(id, 10)+"/verify", in)
	if err != nil {
		return verification.Outcome{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return verification.Outcome{}, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	var out struct {
		Verification verification.Outcome `json:"verification"`
	}
	if err := json.Unmarshal(body, &out); err == nil && out.Verification.Kind != "" {
		if out.Verification.IsRateLimited() && out.Verification.RetryAfter <= 0 {
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				out.Verification.RetryAfter = secs
			}
		}
		return out.Verification, nil
	}

	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)
	return verification.Outcome{}, statusError(resp.StatusCode, apiErr)
}

func (h *httpClient) CheckConflicts(ctx context.Context, scopeID *int64, candidates []conflict.Candidate) ([]conflict.Info, error) {
	req := struct {
		ScopeID    *int64               `json:"scope_id,omitempty"`
		Candidates []conflict.Candidate `json:"candidates"`
	}{scopeID, candidates}

	var out struct {
		Conflicts []conflict.Info `json:"conflicts"`
	}
	if err := h.call(ctx, "/api/v1/conflicts/check", req, &out); err != nil {
		return nil, err
	}
	return out.Conflicts, nil
}

func (h *httpClient) ResolveConflicts(ctx context.Context, scopeID *int64, resolutions []conflict.Resolution) (*conflict.ResolveResult, error) {
	req := struct {
		ScopeID     *int64                `json:"scope_id,omitempty"`
		Resolutions []conflict.Resolution `json:"resolutions"`
	}{scopeID, resolutions}

	var out conflict.ResolveResult
	if err := h.call(ctx, "/api/v1/conflicts/resolve", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// call POST с JSON, ожидает 200 и раскладывает тело в out.
func (h *httpClient) call(ctx context.Context, path string, body, out any) error {
	resp, err := h.doJSON(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, decodeAPIError(resp.Body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (h *httpClient) doJSON(ctx context.Context, method, path string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
	}
	return h.doRequest(ctx, method, path, bytes.NewReader(jsonData), "application/json")
}

// doRequest сетевые ошибки оборачиваются в ErrUnavailable, кроме отмены контекста.
func (h *httpClient) doRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	h.log.Debug("request done",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return resp, nil
}

func decodeAPIError(r io.Reader) apiError {
	var e apiError
	_ = json.NewDecoder(r).Decode(&e)
	return e
}

func statusError(code int, e apiError) error {
	msg := e.message(code)

	switch {
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", submission.ErrNotFound, msg)
	case code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", submission.ErrForbidden, msg)
	case code == http.StatusUnprocessableEntity, code == http.StatusBadRequest, code == http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: %s", submission.ErrValidation, msg)
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, code, msg)
	default:
		return fmt.Errorf("unexpected status %d: %s", code, msg)
	}
}
