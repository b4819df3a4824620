// Package submission реализует путь создания сабмита: валидация, вставка без перезаписи,
// синхронная проверка доказательства и единая политика разрешения совпадений по дате.
package submission

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"

	"stepsync/internal/domain/verification"
)

// EventVerified событие для внешних подписчиков после подтвержденной проверки.
const EventVerified = "submission.verified"

// Notifier получатель событий. Реализация не должна блокировать вызывающего.
type Notifier interface {
	Publish(ctx context.Context, event string, payload any)
}

type Servicer interface {
	Create(ctx context.Context, userID int64, in Input) (*CreateResult, error)
	Upsert(ctx context.Context, userID int64, in Input, policy Policy) (*CreateResult, error)
	RetryVerification(ctx context.Context, userID, submissionID int64, in Input) (verification.Outcome, error)
	FindExisting(ctx context.Context, userID int64, scopeID *int64, dates []string) ([]Submission, error)
}

type Service struct {
	repo      Repository
	verifier  verification.Verifier
	validator Validator
	notifier  Notifier
	log       *slog.Logger
}

// NewService создает сервис сабмитов
func NewService(repo Repository, verifier verification.Verifier, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		verifier:  verifier,
		validator: NewValidator(),
		notifier:  notifier,
		log:       log.With("component", "submission_service"),
	}
}

// Create путь создания: существующая запись никогда не перезаписывается.
func (s *Service) Create(ctx context.Context, userID int64, in Input) (*CreateResult, error) {
	return s.Upsert(ctx, userID, in, PolicyReject)
}

// Upsert единая точка записи для создания и разрешения конфликтов.
func (s *Service) Upsert(ctx context.Context, userID int64, in Input, policy Policy) (*CreateResult, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	sub := &Submission{
		UserID:    userID,
		ScopeID:   in.ScopeID,
		ForDate:   in.ForDate,
		Steps:     in.Steps,
		Partial:   in.Partial,
		ProofPath: in.ProofPath,
	}

	id, err := s.repo.Insert(ctx, sub)
	if err == nil {
		sub.ID = id
		s.log.Info("submission created", "submission_id", id, "user_id", userID, "for_date", in.ForDate)

		outcome := s.verify(ctx, sub)
		return &CreateResult{Submission: sub, Outcome: &outcome, Applied: true}, nil
	}

	if !errors.Is(err, ErrAlreadyExists) {
		s.log.Error("failed to insert submission", "user_id", userID, "for_date", in.ForDate, "error", err)
		return nil, fmt.Errorf("insert submission: %w", err)
	}

	existing, err := s.repo.FindByDate(ctx, userID, in.ScopeID, in.ForDate)
	if err != nil {
		return nil, fmt.Errorf("load existing submission: %w", err)
	}

	switch policy {
	case PolicyKeepExisting:
		return &CreateResult{Submission: existing}, nil

	case PolicyUseIncoming:
		if err := s.repo.ReplacePayload(ctx, existing.ID, in); err != nil {
			s.log.Error("failed to replace submission payload", "submission_id", existing.ID, "error", err)
			return nil, fmt.Errorf("replace submission: %w", err)
		}

		existing.Steps = in.Steps
		existing.ProofPath = in.ProofPath
		existing.Partial = in.Partial
		existing.Verified = nil
		existing.ToleranceUsed = nil
		existing.Extracted = nil
		existing.VerificationNotes = nil

		s.log.Info("submission replaced", "submission_id", existing.ID, "user_id", userID, "for_date", in.ForDate)

		outcome := s.verify(ctx, existing)
		return &CreateResult{Submission: existing, Outcome: &outcome, Applied: true}, nil

	default:
		return nil, &ConflictError{Existing: existing.Snapshot()}
	}
}

// RetryVerification повторно проверяет существующую запись.
// Ответ сервиса проверки возвращается как значение, а не как ошибка.
func (s *Service) RetryVerification(ctx context.Context, userID, submissionID int64, in Input) (verification.Outcome, error) {
	sub, err := s.repo.Get(ctx, submissionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return verification.Outcome{}, ErrNotFound
		}
		return verification.Outcome{}, fmt.Errorf("get submission: %w", err)
	}

	if sub.UserID != userID {
		return verification.Outcome{}, ErrForbidden
	}

	if in.ForDate != "" && in.ForDate != sub.ForDate {
		return verification.Outcome{}, fmt.Errorf("%w: for_date does not match submission", ErrValidation)
	}

	return s.verify(ctx, sub), nil
}

func (s *Service) FindExisting(ctx context.Context, userID int64, scopeID *int64, dates []string) ([]Submission, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	subs, err := s.repo.FindByDates(ctx, userID, scopeID, dates)
	if err != nil {
		return nil, fmt.Errorf("find submissions by dates: %w", err)
	}

	return subs, nil
}

func (s *Service) verify(ctx context.Context, sub *Submission) verification.Outcome {
	req := verification.Request{
		Steps:        sub.Steps,
		ForDate:      sub.ForDate,
		ScopeID:      sub.ScopeID,
		SubmissionID: sub.ID,
		RequesterID:  sub.UserID,
	}
	if sub.ProofPath != nil {
		req.ProofPath = *sub.ProofPath
	}

	outcome := s.verifier.Verify(ctx, req)

	upd, ok := updateFromOutcome(outcome)
	if !ok {
		s.log.Info("verification left pending",
			"submission_id", sub.ID,
			"outcome", outcome.Kind,
			"retry_after", outcome.RetryAfter,
		)
		return outcome
	}

	// Строка уже вставлена; ошибка записи результата не откатывает сабмит.
	if err := s.repo.ApplyVerification(ctx, sub.ID, upd); err != nil {
		s.log.Error("failed to store verification result", "submission_id", sub.ID, "error", err)
		return outcome
	}
	applyUpdate(sub, upd)

	if sub.Verified != nil && *sub.Verified && s.notifier != nil {
		s.notifier.Publish(ctx, EventVerified, sub)
	}

	return outcome
}

// updateFromOutcome ok=false значит поля проверки остаются null.
func updateFromOutcome(out verification.Outcome) (VerificationUpdate, bool) {
	switch out.Kind {
	case verification.KindConfirmed:
		if out.Data == nil {
			return VerificationUpdate{}, false
		}
		verified := out.Data.Verified
		upd := VerificationUpdate{
			Verified:      &verified,
			ToleranceUsed: out.Data.ToleranceUsed,
			Extracted:     out.Data.Extracted,
		}
		if out.Data.Steps > 0 {
			steps := out.Data.Steps
			upd.Steps = &steps
		}
		if out.Data.Notes != "" {
			notes := out.Data.Notes
			upd.Notes = &notes
		}
		return upd, true

	case verification.KindFailed:
		if out.ShouldRetry {
			return VerificationUpdate{}, false
		}
		verified := false
		notes := out.Code + ": " + out.Message
		return VerificationUpdate{Verified: &verified, Notes: &notes}, true

	default:
		return VerificationUpdate{}, false
	}
}

func applyUpdate(sub *Submission, upd VerificationUpdate) {
	sub.Verified = upd.Verified
	if upd.Steps != nil {
		sub.Steps = *upd.Steps
	}
	sub.ToleranceUsed = upd.ToleranceUsed
	sub.Extracted = upd.Extracted
	sub.VerificationNotes = upd.Notes
}
