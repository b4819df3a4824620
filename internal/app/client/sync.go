package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"stepsync/internal/domain/submission"
)

// Queue операции очереди, которые нужны синхронизации.
type Queue interface {
	Acquire(ctx context.Context) (release func() error, requeued int64, err error)
	ListPending(ctx context.Context) ([]*QueueItem, error)
	Claim(ctx context.Context, id string) (bool, error)
	SetStatus(ctx context.Context, id string, status ItemStatus, errMsg string) error
	IncrementRetry(ctx context.Context, id, errMsg string) (int, error)
	MarkRejected(ctx context.Context, id, errMsg string) error
	SetProofPath(ctx context.Context, id, path string) error
	Remove(ctx context.Context, id string) error
}

// SubmissionAPI серверная часть, которую вызывает синхронизация.
type SubmissionAPI interface {
	UploadProof(ctx context.Context, data []byte, contentType string) (string, error)
	CreateSubmission(ctx context.Context, in submission.Input) (*CreateResponse, error)
}

type Notifier interface {
	SyncCompleted(summary Summary)
}

// Summary итог одного прохода.
// Synced включает и Conflicts: запись уже была на сервере, элемент снят с очереди.
type Summary struct {
	Synced    int           `json:"synced"`
	Conflicts int           `json:"conflicts"`
	Retried   int           `json:"retried"`
	Failed    int           `json:"failed"`
	Rejected  int           `json:"rejected"`
	Duration  time.Duration `json:"duration"`
}

// SyncStats статистика синхронизации
type SyncStats struct {
	TotalSyncs      int       `json:"total_syncs"`
	LastSuccessful  time.Time `json:"last_successful"`
	LastFailed      time.Time `json:"last_failed"`
	TotalSynced     int       `json:"total_synced"`
	TotalConflicts  int       `json:"total_conflicts"`
	TotalFailed     int       `json:"total_failed"`
	TotalRejected   int       `json:"total_rejected"`
	AvgSyncDuration float64   `json:"avg_sync_duration"`
}

// SyncService разгружает очередь на сервер. Один проход за раз.
type SyncService struct {
	queue    Queue
	api      SubmissionAPI
	notifier Notifier
	log      *slog.Logger
	debounce time.Duration
	trigger  chan struct{}

	notifyWG sync.WaitGroup

	mu        sync.RWMutex
	isSyncing bool
	lastSync  time.Time
	stats     SyncStats
}

func NewSyncService(queue Queue, api SubmissionAPI, notifier Notifier, debounce time.Duration, log *slog.Logger) *SyncService {
	return &SyncService{
		queue:    queue,
		api:      api,
		notifier: notifier,
		log:      log.With("component", "sync"),
		debounce: debounce,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger просит о проходе и не блокируется; серия вызовов схлопывается в один.
func (s *SyncService) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run ждет сигналов Trigger до отмены ctx.
func (s *SyncService) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.trigger:
		}

		if s.debounce > 0 {
			timer := time.NewTimer(s.debounce)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			// сигналы во время паузы покрываются этим проходом
			select {
			case <-s.trigger:
			default:
			}
		}

		if _, err := s.Sync(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) && ctx.Err() == nil {
			s.log.Error("sync pass failed", "error", err)
		}
	}
}

// Sync один проход по pending элементам в порядке постановки.
// Параллельный вызов, в том числе из другого процесса на той же очереди,
// сразу получает ErrSyncInProgress.
func (s *SyncService) Sync(ctx context.Context) (*Summary, error) {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	start := time.Now()

	release, requeued, err := s.queue.Acquire(ctx)
	if errors.Is(err, ErrSyncInProgress) {
		s.log.Debug("queue is being synced by another process")
		return nil, err
	}
	if err != nil {
		s.recordFailure()
		return nil, fmt.Errorf("acquire queue: %w", err)
	}
	defer func() {
		if err := release(); err != nil {
			s.log.Error("release queue lock failed", "error", err)
		}
	}()
	if requeued > 0 {
		s.log.Info("requeued interrupted items", "count", requeued)
	}

	items, err := s.queue.ListPending(ctx)
	if err != nil {
		s.recordFailure()
		return nil, fmt.Errorf("list pending: %w", err)
	}

	s.log.Debug("sync started", "pending", len(items))

	var summary Summary
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		s.syncItem(ctx, item, &summary)
	}
	summary.Duration = time.Since(start)

	s.updateStats(summary)
	s.log.Info("sync finished",
		"synced", summary.Synced,
		"conflicts", summary.Conflicts,
		"retried", summary.Retried,
		"failed", summary.Failed,
		"rejected", summary.Rejected,
		"duration", summary.Duration,
	)

	if s.notifier != nil {
		s.notifyWG.Add(1)
		go func() {
			defer s.notifyWG.Done()
			s.notifier.SyncCompleted(summary)
		}()
	}

	return &summary, ctx.Err()
}

func (s *SyncService) syncItem(ctx context.Context, item *QueueItem, summary *Summary) {
	log := s.log.With("client_id", item.ClientID, "for_date", item.Input.ForDate)

	claimed, err := s.queue.Claim(ctx, item.ClientID)
	if err != nil {
		log.Error("claim item failed", "error", err)
		return
	}
	if !claimed {
		log.Debug("item no longer pending, skipping")
		return
	}

	err = s.push(ctx, item)
	// статус пишем даже если ctx отменили посреди элемента
	wctx := context.WithoutCancel(ctx)

	switch {
	case err == nil || errors.Is(err, submission.ErrAlreadyExists):
		if errors.Is(err, submission.ErrAlreadyExists) {
			summary.Conflicts++
			log.Info("submission already on server, treating as synced")
		}
		summary.Synced++
		if err := s.queue.SetStatus(wctx, item.ClientID, StatusSynced, ""); err != nil {
			log.Error("mark synced failed", "error", err)
			return
		}
		if err := s.queue.Remove(wctx, item.ClientID); err != nil {
			log.Error("remove synced item failed", "error", err)
		}

	case errors.Is(err, submission.ErrValidation):
		summary.Rejected++
		log.Warn("submission rejected", "error", err)
		if err := s.queue.MarkRejected(wctx, item.ClientID, err.Error()); err != nil {
			log.Error("mark rejected failed", "error", err)
		}

	case ctx.Err() != nil:
		// отмена не считается попыткой
		if err := s.queue.SetStatus(wctx, item.ClientID, StatusPending, item.LastError); err != nil {
			log.Error("requeue cancelled item failed", "error", err)
		}

	default:
		count, incErr := s.queue.IncrementRetry(wctx, item.ClientID, err.Error())
		if incErr != nil {
			log.Error("increment retry failed", "error", incErr)
			return
		}

		status := StatusPending
		if count >= MaxRetries {
			status = StatusFailed
			summary.Failed++
		} else {
			summary.Retried++
		}
		log.Warn("sync attempt failed", "retry_count", count, "status", status, "error", err)

		if err := s.queue.SetStatus(wctx, item.ClientID, status, err.Error()); err != nil {
			log.Error("set status after retry failed", "error", err)
		}
	}
}

// push загружает доказательство (один раз) и создает сабмит.
func (s *SyncService) push(ctx context.Context, item *QueueItem) error {
	in := item.Input

	if item.ProofFile != "" && (in.ProofPath == nil || *in.ProofPath == "") {
		data, err := os.ReadFile(item.ProofFile)
		if err != nil {
			return fmt.Errorf("%w: read proof file: %v", submission.ErrValidation, err)
		}

		path, err := s.api.UploadProof(ctx, data, http.DetectContentType(data))
		if err != nil {
			return fmt.Errorf("upload proof: %w", err)
		}
		if err := s.queue.SetProofPath(ctx, item.ClientID, path); err != nil {
			return fmt.Errorf("save proof path: %w", err)
		}
		in.ProofPath = &path
	}

	if _, err := s.api.CreateSubmission(ctx, in); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

func (s *SyncService) updateStats(summary Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TotalSyncs++
	s.stats.TotalSynced += summary.Synced
	s.stats.TotalConflicts += summary.Conflicts
	s.stats.TotalFailed += summary.Failed
	s.stats.TotalRejected += summary.Rejected

	now := time.Now()
	s.lastSync = now
	if summary.Failed == 0 && summary.Retried == 0 {
		s.stats.LastSuccessful = now
	} else {
		s.stats.LastFailed = now
	}

	// скользящее среднее по всем проходам
	n := float64(s.stats.TotalSyncs)
	s.stats.AvgSyncDuration = (s.stats.AvgSyncDuration*(n-1) + summary.Duration.Seconds()) / n
}

func (s *SyncService) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.LastFailed = time.Now()
}

// GetStats возвращает копию статистики
func (s *SyncService) GetStats() SyncStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *SyncService) GetLastSyncTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

// Wait ждет доставки уведомлений о завершенных проходах.
func (s *SyncService) Wait() {
	s.notifyWG.Wait()
}

func (s *SyncService) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}
