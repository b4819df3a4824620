package standings

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"stepsync/internal/app/server/api/http/middleware/auth"
	"stepsync/internal/domain/standings"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Leaderboard(ctx context.Context, scopeID *int64, from, to string) ([]standings.Standing, error) {
	args := m.Called(ctx, scopeID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]standings.Standing), args.Error(1)
}

func (m *MockService) Gap(ctx context.Context, userID int64, scopeID *int64, from, to string) (*standings.GapReport, error) {
	args := m.Called(ctx, userID, scopeID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*standings.GapReport), args.Error(1)
}

func (m *MockService) HeadToHead(ctx context.Context, scopeID *int64, userA, userB int64, from, to string) (*standings.HeadToHeadResult, error) {
	args := m.Called(ctx, scopeID, userA, userB, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*standings.HeadToHeadResult), args.Error(1)
}

func setup(t *testing.T, svc *MockService) humatest.TestAPI {
	_, api := humatest.New(t)
	withUser := func(ctx huma.Context, next func(huma.Context)) {
		next(huma.WithContext(ctx, auth.WithUserID(ctx.Context(), 1)))
	}
	NewHandler(svc, slog.Default(), huma.Middlewares{withUser}).SetupRoutes(api)
	return api
}

func TestHandler_Leaderboard(t *testing.T) {
	svc := new(MockService)
	api := setup(t, svc)
	scope := int64(4)

	svc.On("Leaderboard", mock.Anything, &scope, "2025-03-01", "2025-03-07").Return([]standings.Standing{
		{Rank: 1, UserID: 2, Total: 12000},
		{Rank: 2, UserID: 1, Total: 9000},
	}, nil)

	resp := api.Get("/api/v1/standings/leaderboard?scope_id=4&from=2025-03-01&to=2025-03-07")

	require.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Standings []standings.Standing `json:"standings"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Len(t, body.Standings, 2)
}

func TestHandler_Gap(t *testing.T) {
	svc := new(MockService)
	api := setup(t, svc)

	svc.On("Gap", mock.Anything, int64(1), (*int64)(nil), "2025-03-01", "2025-03-07").
		Return(&standings.GapReport{UserID: 1, Rank: 2, Total: 9000, LeaderTotal: 12000, GapToLeader: 3000, GapToNext: 3000}, nil)

	resp := api.Get("/api/v1/standings/gap?from=2025-03-01&to=2025-03-07")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"gap_to_leader":3000`)
}

func TestHandler_HeadToHead(t *testing.T) {
	svc := new(MockService)
	api := setup(t, svc)
	winner := int64(1)

	svc.On("HeadToHead", mock.Anything, (*int64)(nil), int64(1), int64(2), "2025-03-01", "2025-03-07").
		Return(&standings.HeadToHeadResult{UserA: 1, TotalA: 9000, UserB: 2, TotalB: 8000, Winner: &winner}, nil)

	resp := api.Get("/api/v1/standings/head-to-head?opponent=2&from=2025-03-01&to=2025-03-07")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"winner":1`)
}

func TestHandler_BadRange(t *testing.T) {
	svc := new(MockService)
	api := setup(t, svc)

	svc.On("Leaderboard", mock.Anything, (*int64)(nil), "2025-03-07", "2025-03-01").
		Return(nil, standings.ErrInvalidRange)

	resp := api.Get("/api/v1/standings/leaderboard?from=2025-03-07&to=2025-03-01")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
