package standings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"stepsync/internal/domain/dedup"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListEntries(ctx context.Context, scopeID *int64, from, to string, userIDs []int64) ([]dedup.UserEntry, error) {
	args := m.Called(ctx, scopeID, from, to, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dedup.UserEntry), args.Error(1)
}

var rows = []dedup.UserEntry{
	{UserID: 1, Date: "2025-03-01", Steps: 5000},
	{UserID: 1, Date: "2025-03-01", Steps: 7000}, // дубль даты, учитывается максимум
	{UserID: 1, Date: "2025-03-02", Steps: 3000},
	{UserID: 2, Date: "2025-03-01", Steps: 10000},
	{UserID: 3, Date: "2025-03-01", Steps: 6000},
	{UserID: 3, Date: "2025-03-02", Steps: 4000},
	{UserID: 4, Date: "2025-03-02", Steps: 2000},
}

func TestService_Leaderboard(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())
	ctx := context.Background()

	repo.On("ListEntries", ctx, (*int64)(nil), "2025-03-01", "2025-03-07", []int64(nil)).Return(rows, nil)

	board, err := svc.Leaderboard(ctx, nil, "2025-03-01", "2025-03-07")

	require.NoError(t, err)
	assert.Equal(t, []Standing{
		{Rank: 1, UserID: 1, Total: 10000},
		{Rank: 1, UserID: 2, Total: 10000},
		{Rank: 1, UserID: 3, Total: 10000},
		{Rank: 2, UserID: 4, Total: 2000},
	}, board)
}

func TestService_Gap(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())
	ctx := context.Background()

	entries := []dedup.UserEntry{
		{UserID: 1, Date: "2025-03-01", Steps: 9000},
		{UserID: 2, Date: "2025-03-01", Steps: 6000},
		{UserID: 3, Date: "2025-03-01", Steps: 2500},
	}
	repo.On("ListEntries", ctx, (*int64)(nil), "2025-03-01", "2025-03-01", []int64(nil)).Return(entries, nil)

	report, err := svc.Gap(ctx, 3, nil, "2025-03-01", "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, &GapReport{UserID: 3, Rank: 3, Total: 2500, LeaderTotal: 9000, GapToLeader: 6500, GapToNext: 3500}, report)

	leader, err := svc.Gap(ctx, 1, nil, "2025-03-01", "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, 0, leader.GapToLeader)
	assert.Equal(t, 0, leader.GapToNext)

	absent, err := svc.Gap(ctx, 99, nil, "2025-03-01", "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, 4, absent.Rank)
	assert.Equal(t, 9000, absent.GapToLeader)
	assert.Equal(t, 2500, absent.GapToNext)
}

func TestService_HeadToHead(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())
	ctx := context.Background()
	scope := int64(12)

	repo.On("ListEntries", ctx, &scope, "2025-03-01", "2025-03-07", []int64{1, 3}).Return([]dedup.UserEntry{
		{UserID: 1, Date: "2025-03-01", Steps: 5000},
		{UserID: 1, Date: "2025-03-01", Steps: 7000},
		{UserID: 3, Date: "2025-03-01", Steps: 6000},
	}, nil)

	res, err := svc.HeadToHead(ctx, &scope, 1, 3, "2025-03-01", "2025-03-07")

	require.NoError(t, err)
	assert.Equal(t, 7000, res.TotalA)
	assert.Equal(t, 6000, res.TotalB)
	require.NotNil(t, res.Winner)
	assert.Equal(t, int64(1), *res.Winner)
	assert.False(t, res.Tie)
}

func TestService_HeadToHead_Tie(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())
	ctx := context.Background()

	repo.On("ListEntries", ctx, (*int64)(nil), "2025-03-01", "2025-03-01", []int64{1, 2}).Return([]dedup.UserEntry{}, nil)

	res, err := svc.HeadToHead(ctx, nil, 1, 2, "2025-03-01", "2025-03-01")

	require.NoError(t, err)
	assert.True(t, res.Tie)
	assert.Nil(t, res.Winner)
}

func TestService_Errors(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())
	ctx := context.Background()

	_, err := svc.Leaderboard(ctx, nil, "2025-03-07", "2025-03-01")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.Leaderboard(ctx, nil, "yesterday", "2025-03-01")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.HeadToHead(ctx, nil, 1, 1, "2025-03-01", "2025-03-01")
	assert.ErrorIs(t, err, ErrSameUser)

	repo.On("ListEntries", ctx, (*int64)(nil), "2025-03-01", "2025-03-01", []int64(nil)).Return(nil, errors.New("db down"))
	_, err = svc.Leaderboard(ctx, nil, "2025-03-01", "2025-03-01")
	assert.Error(t, err)
}
