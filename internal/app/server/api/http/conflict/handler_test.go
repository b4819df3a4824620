package conflict

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"stepsync/internal/app/server/api/http/middleware/auth"
	"stepsync/internal/domain/conflict"
	"stepsync/internal/domain/submission"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Check(ctx context.Context, userID int64, scopeID *int64, candidates []conflict.Candidate) ([]conflict.Info, error) {
	args := m.Called(ctx, userID, scopeID, candidates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]conflict.Info), args.Error(1)
}

func (m *MockService) Resolve(ctx context.Context, userID int64, scopeID *int64, resolutions []conflict.Resolution) (*conflict.ResolveResult, error) {
	args := m.Called(ctx, userID, scopeID, resolutions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*conflict.ResolveResult), args.Error(1)
}

func setup(t *testing.T, svc *MockService) humatest.TestAPI {
	_, api := humatest.New(t)
	withUser := func(ctx huma.Context, next func(huma.Context)) {
		next(huma.WithContext(ctx, auth.WithUserID(ctx.Context(), 1)))
	}
	NewHandler(svc, slog.Default(), huma.Middlewares{withUser}).SetupRoutes(api)
	return api
}

func TestHandler_Check(t *testing.T) {
	svc := new(MockService)
	api := setup(t, svc)
	scope := int64(4)

	svc.On("Check", mock.Anything, int64(1), &scope, []conflict.Candidate{
		{Date: "2025-03-01", HasProof: true, Source: conflict.SourceExtraction},
	}).Return([]conflict.Info{{
		Date:      "2025-03-01",
		Existing:  submission.Snapshot{ID: 10, ForDate: "2025-03-01", Steps: 4000},
		Source:    conflict.SourceExtraction,
		Suggested: conflict.ActionUseIncoming,
	}}, nil)

	resp := api.Post("/api/v1/conflicts/check", map[string]any{
		"scope_id": 4,
		"candidates": []map[string]any{
			{"date": "2025-03-01", "has_proof": true, "source": "extraction"},
		},
	})

	require.Equal(t, http.StatusOK, resp.Code)

	var body checkResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Conflicts, 1)
	assert.Equal(t, conflict.ActionUseIncoming, body.Conflicts[0].Suggested)
	assert.Equal(t, int64(10), body.Conflicts[0].Existing.ID)
}

func TestHandler_Resolve(t *testing.T) {
	svc := new(MockService)
	api := setup(t, svc)

	svc.On("Resolve", mock.Anything, int64(1), (*int64)(nil), mock.Anything).Return(&conflict.ResolveResult{
		Resolved: 1,
		Results: []conflict.EntryResult{
			{Date: "2025-03-01", Action: conflict.ActionKeepExisting, Success: true},
			{Date: "2025-03-02", Action: conflict.ActionUseIncoming, Success: false, Message: "database timeout"},
		},
	}, nil)

	resp := api.Post("/api/v1/conflicts/resolve", map[string]any{
		"resolutions": []map[string]any{
			{"date": "2025-03-01", "action": "keep_existing"},
			{"date": "2025-03-02", "action": "use_incoming", "incoming": map[string]any{"steps": 7000}},
		},
	})

	require.Equal(t, http.StatusOK, resp.Code)

	var body resolveResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Ok", body.Status)
	assert.Equal(t, 1, body.Resolved)
	require.Len(t, body.Results, 2)
	assert.False(t, body.Results[1].Success)
}

func TestHandler_Resolve_Error(t *testing.T) {
	svc := new(MockService)
	api := setup(t, svc)

	svc.On("Resolve", mock.Anything, int64(1), (*int64)(nil), mock.Anything).Return(nil, errors.New("db down"))

	resp := api.Post("/api/v1/conflicts/resolve", map[string]any{
		"resolutions": []map[string]any{{"date": "2025-03-01", "action": "skip"}},
	})

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
