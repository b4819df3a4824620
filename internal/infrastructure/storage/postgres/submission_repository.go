package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"stepsync/internal/dbx"
	"stepsync/internal/domain/dedup"
	"stepsync/internal/domain/submission"
)

const submissionColumns = `id, user_id, scope_id, for_date::text, steps, partial, proof_path,
       verified, tolerance_used, extracted, verification_notes, created_at, updated_at`

// SubmissionRepository реализует submission.Repository и standings.Repository.
type SubmissionRepository struct {
	db dbx.DBTX
}

func NewSubmissionRepository(db dbx.DBTX) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Insert никогда не перезаписывает существующую строку.
func (r *SubmissionRepository) Insert(ctx context.Context, s *submission.Submission) (int64, error) {
	query := `INSERT INTO submissions (user_id, scope_id, for_date, steps, partial, proof_path)
         VALUES ($1, $2, $3, $4, $5, $6)
         ON CONFLICT (user_id, (COALESCE(scope_id, 0)), for_date) DO NOTHING
         RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		s.UserID, nullInt64(s.ScopeID), s.ForDate, s.Steps, s.Partial, nullString(s.ProofPath),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, submission.ErrAlreadyExists
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *SubmissionRepository) Get(ctx context.Context, id int64) (*submission.Submission, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)

	s, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, submission.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *SubmissionRepository) FindByDate(ctx context.Context, userID int64, scopeID *int64, date string) (*submission.Submission, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions
         WHERE user_id = $1 AND scope_id IS NOT DISTINCT FROM $2 AND for_date = $3`,
		userID, nullInt64(scopeID), date)

	s, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, submission.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *SubmissionRepository) FindByDates(ctx context.Context, userID int64, scopeID *int64, dates []string) ([]submission.Submission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions
         WHERE user_id = $1 AND scope_id IS NOT DISTINCT FROM $2
           AND for_date::text = ANY(string_to_array($3, ','))
         ORDER BY for_date`,
		userID, nullInt64(scopeID), strings.Join(dates, ","))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var subs []submission.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return subs, nil
}

func (r *SubmissionRepository) ReplacePayload(ctx context.Context, id int64, in submission.Input) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE submissions
         SET steps = $2, proof_path = $3, partial = $4,
             verified = NULL, tolerance_used = NULL, extracted = NULL, verification_notes = NULL,
             updated_at = NOW()
         WHERE id = $1`,
		id, in.Steps, nullString(in.ProofPath), in.Partial)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *SubmissionRepository) ApplyVerification(ctx context.Context, id int64, upd submission.VerificationUpdate) error {
	var extracted any
	if len(upd.Extracted) > 0 {
		b, err := json.Marshal(upd.Extracted)
		if err != nil {
			return fmt.Errorf("marshal extracted metrics: %w", err)
		}
		extracted = string(b)
	}

	var steps any
	if upd.Steps != nil {
		steps = *upd.Steps
	}

	var verified any
	if upd.Verified != nil {
		verified = *upd.Verified
	}

	var tolerance any
	if upd.ToleranceUsed != nil {
		tolerance = *upd.ToleranceUsed
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE submissions
         SET verified = $2, steps = COALESCE($3, steps), tolerance_used = $4,
             extracted = $5, verification_notes = $6, updated_at = NOW()
         WHERE id = $1`,
		id, verified, steps, tolerance, extracted, nullString(upd.Notes))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// ListEntries строки для подсчета итогов; отклоненные проверкой записи не учитываются.
func (r *SubmissionRepository) ListEntries(ctx context.Context, scopeID *int64, from, to string, userIDs []int64) ([]dedup.UserEntry, error) {
	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, for_date::text, steps FROM submissions
         WHERE scope_id IS NOT DISTINCT FROM $1
           AND for_date BETWEEN $2 AND $3
           AND verified IS DISTINCT FROM FALSE
           AND ($4 = '' OR user_id::text = ANY(string_to_array($4, ',')))`,
		nullInt64(scopeID), from, to, strings.Join(ids, ","))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var entries []dedup.UserEntry
	for rows.Next() {
		var e dedup.UserEntry
		if err := rows.Scan(&e.UserID, &e.Date, &e.Steps); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*submission.Submission, error) {
	var (
		s         submission.Submission
		scopeID   sql.NullInt64
		proofPath sql.NullString
		verified  sql.NullBool
		tolerance sql.NullFloat64
		extracted []byte
		notes     sql.NullString
	)

	err := row.Scan(
		&s.ID, &s.UserID, &scopeID, &s.ForDate, &s.Steps, &s.Partial, &proofPath,
		&verified, &tolerance, &extracted, &notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if scopeID.Valid {
		s.ScopeID = &scopeID.Int64
	}
	if proofPath.Valid {
		s.ProofPath = &proofPath.String
	}
	if verified.Valid {
		s.Verified = &verified.Bool
	}
	if tolerance.Valid {
		s.ToleranceUsed = &tolerance.Float64
	}
	if notes.Valid {
		s.VerificationNotes = &notes.String
	}
	if len(extracted) > 0 {
		if err := json.Unmarshal(extracted, &s.Extracted); err != nil {
			return nil, fmt.Errorf("decode extracted metrics: %w", err)
		}
	}

	return &s, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return submission.ErrNotFound
	}
	return nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
