// Package conflict обнаруживает даты, на которые у пользователя уже есть сабмит,
// и применяет явные решения клиента по каждой дате независимо.
package conflict

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"stepsync/internal/domain/submission"
)

type Servicer interface {
	Check(ctx context.Context, userID int64, scopeID *int64, candidates []Candidate) ([]Info, error)
	Resolve(ctx context.Context, userID int64, scopeID *int64, resolutions []Resolution) (*ResolveResult, error)
}

type Service struct {
	submissions submission.Servicer
	policy      DefaultPolicy
	log         *slog.Logger
}

type Option func(*Service)

// WithPolicy заменяет эвристику предлагаемого действия.
func WithPolicy(p DefaultPolicy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

func NewService(submissions submission.Servicer, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		submissions: submissions,
		policy:      SmartDefault,
		log:         log.With("component", "conflict_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check возвращает конфликты в порядке кандидатов; даты без записи пропускаются.
func (s *Service) Check(ctx context.Context, userID int64, scopeID *int64, candidates []Candidate) ([]Info, error) {
	existing, err := s.existingByDate(ctx, userID, scopeID, candidateDates(candidates))
	if err != nil {
		return nil, err
	}

	conflicts := make([]Info, 0, len(existing))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.Date]; dup {
			continue
		}
		seen[c.Date] = struct{}{}

		sub, ok := existing[c.Date]
		if !ok {
			continue
		}

		snap := sub.Snapshot()
		conflicts = append(conflicts, Info{
			Date:      c.Date,
			Existing:  snap,
			Source:    c.Source,
			Suggested: s.policy(snap, c),
		})
	}

	s.log.Debug("conflicts checked", "user_id", userID, "candidates", len(candidates), "conflicts", len(conflicts))

	return conflicts, nil
}

// Resolve ошибка одной даты не прерывает обработку остальных.
func (s *Service) Resolve(ctx context.Context, userID int64, scopeID *int64, resolutions []Resolution) (*ResolveResult, error) {
	dates := make([]string, 0, len(resolutions))
	for _, r := range resolutions {
		if r.Date != "" {
			dates = append(dates, r.Date)
		}
	}

	existing, err := s.existingByDate(ctx, userID, scopeID, dates)
	if err != nil {
		return nil, err
	}

	result := &ResolveResult{Results: make([]EntryResult, 0, len(resolutions))}
	for _, r := range resolutions {
		entry := s.resolveOne(ctx, userID, scopeID, r, existing)
		if entry.Success && entry.Action != ActionSkip {
			result.Resolved++
		}
		result.Results = append(result.Results, entry)
	}

	s.log.Info("conflicts resolved",
		"user_id", userID,
		"requested", len(resolutions),
		"resolved", result.Resolved,
	)

	return result, nil
}

func (s *Service) resolveOne(
	ctx context.Context,
	userID int64,
	scopeID *int64,
	r Resolution,
	existing map[string]submission.Submission,
) EntryResult {
	entry := EntryResult{Date: r.Date, Action: r.Action}

	fail := func(err error) EntryResult {
		entry.Message = err.Error()
		return entry
	}

	if r.Date == "" {
		return fail(ErrDateRequired)
	}
	if !r.Action.Valid() {
		return fail(fmt.Errorf("%w: %q", ErrUnknownAction, r.Action))
	}

	if r.Action == ActionSkip {
		entry.Success = true
		entry.Message = "no action"
		return entry
	}

	if _, ok := existing[r.Date]; !ok {
		return fail(ErrNoExisting)
	}

	if r.Action == ActionKeepExisting {
		entry.Success = true
		entry.Message = "kept existing"
		return entry
	}

	if r.Incoming == nil {
		return fail(ErrIncomingMissing)
	}

	res, err := s.submissions.Upsert(ctx, userID, submission.Input{
		ScopeID:   scopeID,
		ForDate:   r.Date,
		Steps:     r.Incoming.Steps,
		Partial:   r.Incoming.Partial,
		ProofPath: r.Incoming.ProofPath,
	}, submission.PolicyUseIncoming)
	if err != nil {
		s.log.Warn("failed to apply incoming submission", "user_id", userID, "date", r.Date, "error", err)
		return fail(err)
	}

	entry.Success = true
	entry.Message = "replaced"
	if res.Outcome != nil {
		entry.Message = "replaced, verification " + string(res.Outcome.Kind)
	}
	return entry
}

func (s *Service) existingByDate(
	ctx context.Context,
	userID int64,
	scopeID *int64,
	dates []string,
) (map[string]submission.Submission, error) {
	subs, err := s.submissions.FindExisting(ctx, userID, scopeID, dates)
	if err != nil {
		s.log.Error("failed to load existing submissions", "user_id", userID, "error", err)
		return nil, fmt.Errorf("load existing submissions: %w", err)
	}

	byDate := make(map[string]submission.Submission, len(subs))
	for _, sub := range subs {
		byDate[sub.ForDate] = sub
	}
	return byDate, nil
}

func candidateDates(candidates []Candidate) []string {
	dates := make([]string, 0, len(candidates))
	for _, c := range candidates {
		dates = append(dates, c.Date)
	}
	return dates
}
