package conflict

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"stepsync/internal/domain/submission"
	"stepsync/internal/domain/verification"
)

type MockSubmissions struct {
	mock.Mock
}

func (m *MockSubmissions) Create(ctx context.Context, userID int64, in submission.Input) (*submission.CreateResult, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*submission.CreateResult), args.Error(1)
}

func (m *MockSubmissions) Upsert(ctx context.Context, userID int64, in submission.Input, policy submission.Policy) (*submission.CreateResult, error) {
	args := m.Called(ctx, userID, in, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*submission.CreateResult), args.Error(1)
}

func (m *MockSubmissions) RetryVerification(ctx context.Context, userID, submissionID int64, in submission.Input) (verification.Outcome, error) {
	args := m.Called(ctx, userID, submissionID, in)
	return args.Get(0).(verification.Outcome), args.Error(1)
}

func (m *MockSubmissions) FindExisting(ctx context.Context, userID int64, scopeID *int64, dates []string) ([]submission.Submission, error) {
	args := m.Called(ctx, userID, scopeID, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]submission.Submission), args.Error(1)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestService_Check(t *testing.T) {
	subs := new(MockSubmissions)
	svc := NewService(subs, slog.Default())
	ctx := context.Background()

	candidates := []Candidate{
		{Date: "2025-03-01", HasProof: true, Source: SourceExtraction},
		{Date: "2025-03-02", HasProof: false, Source: SourceManual},
		{Date: "2025-03-03", HasProof: true, Source: SourceManual},
	}

	subs.On("FindExisting", ctx, int64(1), (*int64)(nil), []string{"2025-03-01", "2025-03-02", "2025-03-03"}).
		Return([]submission.Submission{
			{ID: 10, ForDate: "2025-03-01", Steps: 4000},
			{ID: 11, ForDate: "2025-03-03", Steps: 9000, ProofPath: strPtr("p.jpg"), Verified: boolPtr(true)},
		}, nil)

	conflicts, err := svc.Check(ctx, 1, nil, candidates)

	require.NoError(t, err)
	require.Len(t, conflicts, 2)

	assert.Equal(t, "2025-03-01", conflicts[0].Date)
	assert.Equal(t, int64(10), conflicts[0].Existing.ID)
	assert.Equal(t, ActionUseIncoming, conflicts[0].Suggested)
	assert.Equal(t, SourceExtraction, conflicts[0].Source)

	assert.Equal(t, "2025-03-03", conflicts[1].Date)
	assert.Equal(t, ActionKeepExisting, conflicts[1].Suggested)
}

func TestService_Check_CustomPolicy(t *testing.T) {
	subs := new(MockSubmissions)
	always := func(submission.Snapshot, Candidate) Action { return ActionSkip }
	svc := NewService(subs, slog.Default(), WithPolicy(always))
	ctx := context.Background()

	subs.On("FindExisting", ctx, int64(1), (*int64)(nil), []string{"2025-03-01"}).
		Return([]submission.Submission{{ID: 10, ForDate: "2025-03-01"}}, nil)

	conflicts, err := svc.Check(ctx, 1, nil, []Candidate{{Date: "2025-03-01"}})

	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, ActionSkip, conflicts[0].Suggested)
}

func TestService_Check_LookupError(t *testing.T) {
	subs := new(MockSubmissions)
	svc := NewService(subs, slog.Default())
	ctx := context.Background()

	subs.On("FindExisting", ctx, int64(1), (*int64)(nil), mock.Anything).Return(nil, errors.New("db down"))

	_, err := svc.Check(ctx, 1, nil, []Candidate{{Date: "2025-03-01"}})

	assert.Error(t, err)
}

func TestService_Resolve_EntriesAreIndependent(t *testing.T) {
	subs := new(MockSubmissions)
	svc := NewService(subs, slog.Default())
	ctx := context.Background()
	scope := int64(4)

	subs.On("FindExisting", ctx, int64(1), &scope, []string{"2025-03-01", "2025-03-02", "2025-03-03", "2025-03-09"}).
		Return([]submission.Submission{
			{ID: 1, ForDate: "2025-03-01"},
			{ID: 2, ForDate: "2025-03-02"},
			{ID: 3, ForDate: "2025-03-03"},
		}, nil)

	subs.On("Upsert", ctx, int64(1), submission.Input{ScopeID: &scope, ForDate: "2025-03-02", Steps: 7000},
		submission.PolicyUseIncoming).
		Return(nil, errors.New("database timeout"))

	subs.On("Upsert", ctx, int64(1), submission.Input{ScopeID: &scope, ForDate: "2025-03-03", Steps: 6000, ProofPath: strPtr("x.png")},
		submission.PolicyUseIncoming).
		Return(&submission.CreateResult{
			Submission: &submission.Submission{ID: 3},
			Outcome:    &verification.Outcome{Kind: verification.KindConfirmed},
			Applied:    true,
		}, nil)

	res, err := svc.Resolve(ctx, 1, &scope, []Resolution{
		{Date: "2025-03-01", Action: ActionKeepExisting},
		{Date: "2025-03-02", Action: ActionUseIncoming, Incoming: &IncomingData{Steps: 7000}},
		{Date: "2025-03-03", Action: ActionUseIncoming, Incoming: &IncomingData{Steps: 6000, ProofPath: strPtr("x.png")}},
		{Date: "2025-03-09", Action: ActionKeepExisting},
		{Date: "", Action: ActionUseIncoming},
	})

	require.NoError(t, err)
	require.Len(t, res.Results, 5)

	assert.True(t, res.Results[0].Success)
	assert.False(t, res.Results[1].Success)
	assert.Contains(t, res.Results[1].Message, "database timeout")
	assert.True(t, res.Results[2].Success)
	assert.Equal(t, "replaced, verification confirmed", res.Results[2].Message)
	assert.False(t, res.Results[3].Success)
	assert.Equal(t, ErrNoExisting.Error(), res.Results[3].Message)
	assert.False(t, res.Results[4].Success)

	assert.Equal(t, 2, res.Resolved)
	subs.AssertExpectations(t)
}

func TestService_Resolve_SkipAndInvalid(t *testing.T) {
	subs := new(MockSubmissions)
	svc := NewService(subs, slog.Default())
	ctx := context.Background()

	subs.On("FindExisting", ctx, int64(1), (*int64)(nil), []string{"2025-03-01", "2025-03-02", "2025-03-03"}).
		Return([]submission.Submission{{ID: 1, ForDate: "2025-03-01"}, {ID: 2, ForDate: "2025-03-03"}}, nil)

	res, err := svc.Resolve(ctx, 1, nil, []Resolution{
		{Date: "2025-03-01", Action: ActionSkip},
		{Date: "2025-03-02", Action: "overwrite"},
		{Date: "2025-03-03", Action: ActionUseIncoming},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, res.Resolved)

	assert.True(t, res.Results[0].Success)
	assert.Equal(t, "no action", res.Results[0].Message)
	assert.False(t, res.Results[1].Success)
	assert.Contains(t, res.Results[1].Message, ErrUnknownAction.Error())
	assert.False(t, res.Results[2].Success)
	assert.Equal(t, ErrIncomingMissing.Error(), res.Results[2].Message)

	subs.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSmartDefault(t *testing.T) {
	tests := []struct {
		name     string
		existing submission.Snapshot
		c        Candidate
		want     Action
	}{
		{"incoming proof replaces proofless", submission.Snapshot{}, Candidate{HasProof: true}, ActionUseIncoming},
		{"both have proof", submission.Snapshot{ProofPath: strPtr("a")}, Candidate{HasProof: true}, ActionKeepExisting},
		{"verified existing", submission.Snapshot{Verified: boolPtr(true)}, Candidate{}, ActionKeepExisting},
		{"neither has proof", submission.Snapshot{}, Candidate{}, ActionKeepExisting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SmartDefault(tt.existing, tt.c))
		})
	}
}
