package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"stepsync/internal/dbx"
	"stepsync/internal/domain/submission"
)

const (
	// MaxRetries после стольких сетевых неудач элемент становится failed.
	MaxRetries       = 3
	DefaultRetention = 7 * 24 * time.Hour
)

type ItemStatus string

const (
	StatusPending ItemStatus = "pending"
	StatusSyncing ItemStatus = "syncing"
	StatusSynced  ItemStatus = "synced"
	StatusFailed  ItemStatus = "failed"
)

// QueueItem сабмит, еще не подтвержденный сервером.
type QueueItem struct {
	ClientID   string           `json:"client_id"`
	Input      submission.Input `json:"input"`
	ProofFile  string           `json:"proof_file,omitempty"`
	Status     ItemStatus       `json:"status"`
	RetryCount int              `json:"retry_count"`
	LastError  string           `json:"last_error,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// QueueStore очередь в локальном файле SQLite. Переживает перезапуск процесса.
// Файл очереди общий для всех процессов клиента (sync, daemon), проходы
// между ними разделяет файловая блокировка рядом с базой.
type QueueStore struct {
	db   *sql.DB
	lock *flock.Flock
	now  func() time.Time
}

func NewQueueStore(path string) (*QueueStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}
	// один писатель: sqlite не любит параллельные транзакции
	db.SetMaxOpenConns(1)

	s := &QueueStore{db: db, lock: flock.New(path + ".lock"), now: time.Now}
	if err := s.initTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return s, nil
}

func (s *QueueStore) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS queue_items (
			client_id   TEXT PRIMARY KEY,
			scope_id    INTEGER,
			for_date    TEXT NOT NULL,
			steps       INTEGER NOT NULL,
			partial     INTEGER NOT NULL DEFAULT 0,
			proof_path  TEXT,
			proof_file  TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL,
			retry_count INTEGER NOT NULL DEFAULT 0,
			last_error  TEXT NOT NULL DEFAULT '',
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_queue_items_status ON queue_items(status, created_at);
	`)
	return err
}

// Enqueue сохраняет сабмит в статусе pending. Переполнение диска не глотается.
func (s *QueueStore) Enqueue(ctx context.Context, in submission.Input, proofFile string) (string, error) {
	return s.insert(ctx, s.db, in, proofFile)
}

func (s *QueueStore) insert(ctx context.Context, db dbx.DBTX, in submission.Input, proofFile string) (string, error) {
	id := uuid.NewString()
	now := s.now().UnixNano()

	_, err := db.ExecContext(ctx, `
		INSERT INTO queue_items
			(client_id, scope_id, for_date, steps, partial, proof_path, proof_file, status, retry_count, last_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, '', ?, ?)
	`, id, in.ScopeID, in.ForDate, in.Steps, in.Partial, in.ProofPath, proofFile, StatusPending, now, now)
	if err != nil {
		if isStorageFull(err) {
			return "", fmt.Errorf("%w: %v", ErrStorageFull, err)
		}
		return "", fmt.Errorf("ошибка сохранения в очередь: %w", err)
	}

	return id, nil
}

func isStorageFull(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrFull
}

const selectItem = `
	SELECT client_id, scope_id, for_date, steps, partial, proof_path, proof_file,
	       status, retry_count, last_error, created_at, updated_at
	FROM queue_items`

// ListPending элементы к синхронизации в порядке постановки.
func (s *QueueStore) ListPending(ctx context.Context) ([]*QueueItem, error) {
	return s.query(ctx, selectItem+` WHERE status = ? ORDER BY created_at, rowid`, StatusPending)
}

// List все элементы, включая failed с текстом последней ошибки.
func (s *QueueStore) List(ctx context.Context) ([]*QueueItem, error) {
	return s.query(ctx, selectItem+` ORDER BY created_at, rowid`)
}

func (s *QueueStore) Get(ctx context.Context, id string) (*QueueItem, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, selectItem+` WHERE client_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения элемента очереди: %w", err)
	}
	return item, nil
}

func (s *QueueStore) query(ctx context.Context, query string, args ...any) ([]*QueueItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	var items []*QueueItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования элемента: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*QueueItem, error) {
	var (
		item      QueueItem
		scopeID   sql.NullInt64
		proofPath sql.NullString
		created   int64
		updated   int64
	)

	err := row.Scan(&item.ClientID, &scopeID, &item.Input.ForDate, &item.Input.Steps, &item.Input.Partial,
		&proofPath, &item.ProofFile, &item.Status, &item.RetryCount, &item.LastError, &created, &updated)
	if err != nil {
		return nil, err
	}

	if scopeID.Valid {
		item.Input.ScopeID = &scopeID.Int64
	}
	if proofPath.Valid {
		item.Input.ProofPath = &proofPath.String
	}
	item.CreatedAt = time.Unix(0, created)
	item.UpdatedAt = time.Unix(0, updated)

	return &item, nil
}

// SetStatus переводит элемент в статус. failed допустим только после MaxRetries попыток,
// для ошибок валидации есть MarkRejected.
func (s *QueueStore) SetStatus(ctx context.Context, id string, status ItemStatus, errMsg string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE queue_items SET status = ?, last_error = ?, updated_at = ?
		WHERE client_id = ? AND (? <> 'failed' OR retry_count >= ?)
	`, status, errMsg, s.now().UnixNano(), id, status, MaxRetries)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса: %w", err)
	}
	if n > 0 {
		return nil
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return ErrRetriesNotExhausted
}

// IncrementRetry возвращает новое значение счетчика попыток.
func (s *QueueStore) IncrementRetry(ctx context.Context, id, errMsg string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		UPDATE queue_items SET retry_count = retry_count + 1, last_error = ?, updated_at = ?
		WHERE client_id = ?
		RETURNING retry_count
	`, errMsg, s.now().UnixNano(), id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrItemNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка увеличения счетчика попыток: %w", err)
	}
	return count, nil
}

// MarkRejected терминальный failed для ошибок валидации, без учета счетчика попыток.
func (s *QueueStore) MarkRejected(ctx context.Context, id, errMsg string) error {
	return s.exec(ctx, `
		UPDATE queue_items SET status = ?, last_error = ?, updated_at = ? WHERE client_id = ?
	`, StatusFailed, errMsg, s.now().UnixNano(), id)
}

// SetProofPath запоминает путь загруженного доказательства, чтобы повтор не грузил его снова.
func (s *QueueStore) SetProofPath(ctx context.Context, id, path string) error {
	return s.exec(ctx, `
		UPDATE queue_items SET proof_path = ?, updated_at = ? WHERE client_id = ?
	`, path, s.now().UnixNano(), id)
}

func (s *QueueStore) Remove(ctx context.Context, id string) error {
	return s.exec(ctx, `DELETE FROM queue_items WHERE client_id = ?`, id)
}

func (s *QueueStore) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка изменения очереди: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка изменения очереди: %w", err)
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Acquire берет межпроцессную блокировку прохода синхронизации. Пока она у нас,
// элементы в syncing не может держать никто другой, поэтому они возвращаются в pending.
// Если блокировку держит другой процесс, сразу возвращается ErrSyncInProgress.
func (s *QueueStore) Acquire(ctx context.Context) (release func() error, requeued int64, err error) {
	locked, err := s.lock.TryLock()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка блокировки очереди: %w", err)
	}
	if !locked {
		return nil, 0, ErrSyncInProgress
	}

	requeued, err = s.ResetSyncing(ctx)
	if err != nil {
		_ = s.lock.Unlock()
		return nil, 0, err
	}

	return s.lock.Unlock, requeued, nil
}

// Claim переводит pending элемент в syncing. false: элемент уже не pending.
func (s *QueueStore) Claim(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE queue_items SET status = ?, updated_at = ? WHERE client_id = ? AND status = ?
	`, StatusSyncing, s.now().UnixNano(), id, StatusPending)
	if err != nil {
		return false, fmt.Errorf("ошибка захвата элемента очереди: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ошибка захвата элемента очереди: %w", err)
	}
	return n == 1, nil
}

// ResetSyncing возвращает в pending элементы, застрявшие в syncing после аварийного выхода.
func (s *QueueStore) ResetSyncing(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE queue_items SET status = ?, updated_at = ? WHERE status = ?
	`, StatusPending, s.now().UnixNano(), StatusSyncing)
	if err != nil {
		return 0, fmt.Errorf("ошибка сброса статуса syncing: %w", err)
	}
	return res.RowsAffected()
}

// Prune удаляет synced и failed старше retention. pending не удаляются никогда.
func (s *QueueStore) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	cutoff := s.now().Add(-retention).UnixNano()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM queue_items WHERE status IN (?, ?) AND updated_at < ?
	`, StatusSynced, StatusFailed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки очереди: %w", err)
	}
	return res.RowsAffected()
}

// Resubmit заменяет failed элемент новым с нулевым счетчиком в одной транзакции.
func (s *QueueStore) Resubmit(ctx context.Context, id string) (string, error) {
	var newID string

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		item, err := scanItem(tx.QueryRowContext(ctx, selectItem+` WHERE client_id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrItemNotFound
		}
		if err != nil {
			return fmt.Errorf("ошибка чтения элемента очереди: %w", err)
		}
		if item.Status != StatusFailed {
			return ErrNotFailed
		}

		newID, err = s.insert(ctx, tx, item.Input, item.ProofFile)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM queue_items WHERE client_id = ?`, id); err != nil {
			return fmt.Errorf("ошибка удаления замененного элемента: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return newID, nil
}

func (s *QueueStore) Close() error {
	lockErr := s.lock.Close()
	if err := s.db.Close(); err != nil {
		return err
	}
	return lockErr
}
