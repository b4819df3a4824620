// Package standings считает рейтинги групп и челленджей поверх дедуплицированных итогов.
package standings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/exp/slog"

	"stepsync/internal/domain/dedup"
)

var (
	ErrInvalidRange = errors.New("invalid date range")
	ErrSameUser     = errors.New("head-to-head requires two different users")
)

// Repository источник строк сабмитов. Пустой userIDs означает всех участников.
type Repository interface {
	ListEntries(ctx context.Context, scopeID *int64, from, to string, userIDs []int64) ([]dedup.UserEntry, error)
}

type Standing struct {
	Rank   int   `json:"rank"`
	UserID int64 `json:"user_id"`
	Total  int   `json:"total"`
}

type GapReport struct {
	UserID      int64 `json:"user_id"`
	Rank        int   `json:"rank"`
	Total       int   `json:"total"`
	LeaderTotal int   `json:"leader_total"`
	GapToLeader int   `json:"gap_to_leader"`
	GapToNext   int   `json:"gap_to_next"`
}

type HeadToHeadResult struct {
	UserA  int64  `json:"user_a"`
	TotalA int    `json:"total_a"`
	UserB  int64  `json:"user_b"`
	TotalB int    `json:"total_b"`
	Winner *int64 `json:"winner,omitempty"`
	Tie    bool   `json:"tie"`
}

type Servicer interface {
	Leaderboard(ctx context.Context, scopeID *int64, from, to string) ([]Standing, error)
	Gap(ctx context.Context, userID int64, scopeID *int64, from, to string) (*GapReport, error)
	HeadToHead(ctx context.Context, scopeID *int64, userA, userB int64, from, to string) (*HeadToHeadResult, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "standings_service"),
	}
}

// Leaderboard плотный ранг: равные итоги делят место, порядок внутри по user_id.
func (s *Service) Leaderboard(ctx context.Context, scopeID *int64, from, to string) ([]Standing, error) {
	totals, err := s.totals(ctx, scopeID, from, to, nil)
	if err != nil {
		return nil, err
	}

	return rank(totals), nil
}

func (s *Service) Gap(ctx context.Context, userID int64, scopeID *int64, from, to string) (*GapReport, error) {
	board, err := s.Leaderboard(ctx, scopeID, from, to)
	if err != nil {
		return nil, err
	}

	report := &GapReport{UserID: userID}
	if len(board) == 0 {
		report.Rank = 1
		return report, nil
	}
	report.LeaderTotal = board[0].Total

	idx := -1
	for i, st := range board {
		if st.UserID == userID {
			idx = i
			break
		}
	}

	if idx == -1 {
		last := board[len(board)-1]
		report.Rank = last.Rank + 1
		if last.Total == 0 {
			report.Rank = last.Rank
		}
		report.GapToLeader = report.LeaderTotal
		report.GapToNext = last.Total
		return report, nil
	}

	me := board[idx]
	report.Rank = me.Rank
	report.Total = me.Total
	report.GapToLeader = report.LeaderTotal - me.Total

	for i := idx - 1; i >= 0; i-- {
		if board[i].Total > me.Total {
			report.GapToNext = board[i].Total - me.Total
			break
		}
	}

	return report, nil
}

func (s *Service) HeadToHead(ctx context.Context, scopeID *int64, userA, userB int64, from, to string) (*HeadToHeadResult, error) {
	if userA == userB {
		return nil, ErrSameUser
	}

	totals, err := s.totals(ctx, scopeID, from, to, []int64{userA, userB})
	if err != nil {
		return nil, err
	}

	res := &HeadToHeadResult{
		UserA:  userA,
		TotalA: totals[userA],
		UserB:  userB,
		TotalB: totals[userB],
	}

	switch {
	case res.TotalA > res.TotalB:
		res.Winner = &res.UserA
	case res.TotalB > res.TotalA:
		res.Winner = &res.UserB
	default:
		res.Tie = true
	}

	return res, nil
}

func (s *Service) totals(ctx context.Context, scopeID *int64, from, to string, userIDs []int64) (map[int64]int, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	entries, err := s.repo.ListEntries(ctx, scopeID, from, to, userIDs)
	if err != nil {
		s.log.Error("failed to list entries", "from", from, "to", to, "error", err)
		return nil, fmt.Errorf("list entries: %w", err)
	}

	return dedup.TotalsByUser(entries), nil
}

func rank(totals map[int64]int) []Standing {
	board := make([]Standing, 0, len(totals))
	for userID, total := range totals {
		board = append(board, Standing{UserID: userID, Total: total})
	}

	sort.Slice(board, func(i, j int) bool {
		if board[i].Total != board[j].Total {
			return board[i].Total > board[j].Total
		}
		return board[i].UserID < board[j].UserID
	})

	for i := range board {
		switch {
		case i == 0:
			board[i].Rank = 1
		case board[i].Total == board[i-1].Total:
			board[i].Rank = board[i-1].Rank
		default:
			board[i].Rank = board[i-1].Rank + 1
		}
	}

	return board
}

func validateRange(from, to string) error {
	f, err := time.Parse("2006-01-02", from)
	if err != nil {
		return fmt.Errorf("%w: from must be YYYY-MM-DD", ErrInvalidRange)
	}
	t, err := time.Parse("2006-01-02", to)
	if err != nil {
		return fmt.Errorf("%w: to must be YYYY-MM-DD", ErrInvalidRange)
	}
	if t.Before(f) {
		return fmt.Errorf("%w: to is before from", ErrInvalidRange)
	}
	return nil
}
