package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"stepsync/internal/app/client/config"
	"stepsync/internal/domain/conflict"
	"stepsync/internal/domain/submission"
	"stepsync/internal/domain/verification"
)

const pruneInterval = time.Hour

type App struct {
	config     *config.Config
	log        *slog.Logger
	httpClient *httpClient
	queue      *QueueStore
	sync       *SyncService
	monitor    *ConnectivityMonitor
	validator  submission.Validator
	wg         gosync.WaitGroup
}

// SubmitResult Queued=true, если сервер недоступен и сабмит ушел в очередь.
type SubmitResult struct {
	Queued   bool            `json:"queued"`
	ClientID string          `json:"client_id,omitempty"`
	Response *CreateResponse `json:"response,omitempty"`
}

func New(cfg *config.Config, log *slog.Logger, notifier Notifier) (*App, error) {
	queue, err := NewQueueStore(cfg.QueuePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации очереди: %w", err)
	}

	httpCl := NewHTTPClient(cfg, log)

	app := &App{
		config:     cfg,
		log:        log,
		httpClient: httpCl,
		queue:      queue,
		validator:  submission.NewValidator(),
	}
	app.sync = NewSyncService(queue, httpCl, notifier, cfg.Debounce(), log)
	app.monitor = NewConnectivityMonitor(httpCl, cfg.PollInterval(), app.sync.Trigger, log)

	if token, err := app.GetToken(); err == nil && token != "" {
		httpCl.SetToken(token)
		log.Debug("token loaded", "path", cfg.TokenPath)
	}

	return app, nil
}

// Submit проверяет ввод локально и отправляет сразу; при недоступном сервере ставит в очередь.
// Ошибки валидации и конфликты возвращаются вызывающему, в очередь такие сабмиты не попадают.
func (a *App) Submit(ctx context.Context, in submission.Input, proofFile string) (*SubmitResult, error) {
	if err := a.validator.Validate(in); err != nil {
		return nil, err
	}

	var proof []byte
	if proofFile != "" {
		data, err := os.ReadFile(proofFile)
		if err != nil {
			return nil, fmt.Errorf("%w: read proof file: %v", submission.ErrValidation, err)
		}
		proof = data
	}

	if proof != nil {
		path, err := a.httpClient.UploadProof(ctx, proof, http.DetectContentType(proof))
		if errors.Is(err, ErrUnavailable) {
			return a.enqueue(ctx, in, proofFile, err)
		}
		if err != nil {
			return nil, err
		}
		in.ProofPath = &path
	}

	resp, err := a.httpClient.CreateSubmission(ctx, in)
	if errors.Is(err, ErrUnavailable) {
		// доказательство уже загружено, повторно не понадобится
		return a.enqueue(ctx, in, "", err)
	}
	if err != nil {
		return nil, err
	}

	return &SubmitResult{Response: resp}, nil
}

func (a *App) enqueue(ctx context.Context, in submission.Input, proofFile string, cause error) (*SubmitResult, error) {
	id, err := a.queue.Enqueue(ctx, in, proofFile)
	if err != nil {
		return nil, err
	}
	a.log.Info("server unavailable, submission queued", "client_id", id, "for_date", in.ForDate, "cause", cause)
	return &SubmitResult{Queued: true, ClientID: id}, nil
}

func (a *App) Sync(ctx context.Context) (*Summary, error) {
	return a.sync.Sync(ctx)
}

func (a *App) WaitNotifications() {
	a.sync.Wait()
}

func (a *App) SyncStats() SyncStats {
	return a.sync.GetStats()
}

func (a *App) ListQueue(ctx context.Context) ([]*QueueItem, error) {
	return a.queue.List(ctx)
}

func (a *App) PruneQueue(ctx context.Context) (int64, error) {
	return a.queue.Prune(ctx, a.config.Retention())
}

func (a *App) Resubmit(ctx context.Context, clientID string) (string, error) {
	return a.queue.Resubmit(ctx, clientID)
}

func (a *App) RetryVerification(ctx context.Context, id int64, in submission.Input) (verification.Outcome, error) {
	return a.httpClient.RetryVerification(ctx, id, in)
}

func (a *App) CheckConflicts(ctx context.Context, scopeID *int64, candidates []conflict.Candidate) ([]conflict.Info, error) {
	return a.httpClient.CheckConflicts(ctx, scopeID, candidates)
}

func (a *App) ResolveConflicts(ctx context.Context, scopeID *int64, resolutions []conflict.Resolution) (*conflict.ResolveResult, error) {
	return a.httpClient.ResolveConflicts(ctx, scopeID, resolutions)
}

// CheckConnection проверяет соединение с сервером
func (a *App) CheckConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return a.httpClient.Health(ctx)
}

// Run режим демона: мониторинг сети, синхронизация по сигналу и периодическая чистка очереди.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("client daemon started", "server", a.config.ServerAddress, "env", a.config.Env)

	a.wg.Add(3)
	go func() {
		defer a.wg.Done()
		_ = a.monitor.Run(ctx)
	}()
	go func() {
		defer a.wg.Done()
		_ = a.sync.Run(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.pruneLoop(ctx)
	}()

	a.wg.Wait()
	a.log.Info("client daemon stopped")
	return nil
}

func (a *App) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		if n, err := a.PruneQueue(ctx); err != nil && ctx.Err() == nil {
			a.log.Error("queue prune failed", "error", err)
		} else if n > 0 {
			a.log.Info("queue pruned", "removed", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *App) Close() error {
	a.sync.Wait()
	return a.queue.Close()
}

// GetToken возвращает сохраненный токен
func (a *App) GetToken() (string, error) {
	tokenBytes, err := os.ReadFile(a.config.TokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("токен не найден. Выполните: stepsync token set <token>")
		}
		return "", fmt.Errorf("ошибка чтения токена: %w", err)
	}
	return strings.TrimSpace(string(tokenBytes)), nil
}

// SaveToken сохраняет токен аутентификации
func (a *App) SaveToken(token string) error {
	token = strings.TrimSpace(token)
	if err := os.WriteFile(a.config.TokenPath, []byte(token), 0o600); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}

	a.httpClient.SetToken(token)
	return nil
}

// ClearToken удаляет токен
func (a *App) ClearToken() error {
	if err := os.Remove(a.config.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления токена: %w", err)
	}
	a.httpClient.SetToken("")
	return nil
}
