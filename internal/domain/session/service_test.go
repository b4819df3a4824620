package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockRepository) Validate(ctx context.Context, tokenHash string) (int64, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(int64), args.Error(1)
}

func TestService_Create(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Create", mock.Anything, int64(123), mock.MatchedBy(func(hash string) bool {
		return len(hash) == 64
	}), mock.MatchedBy(func(expiresAt time.Time) bool {
		return expiresAt.After(time.Now().Add(time.Hour))
	})).Return(nil)

	token, err := service.Create(context.Background(), 123, 0)
	assert.NoError(t, err)
	// base64 от 32 байт с паддингом
	assert.Len(t, token, 44)

	mockRepo.AssertExpectations(t)
}

func TestService_Create_RepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Create", mock.Anything, int64(123), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(errors.New("database error"))

	token, err := service.Create(context.Background(), 123, time.Hour)
	assert.Error(t, err)
	assert.Empty(t, token)
}

func TestService_Validate(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Validate", mock.Anything, hashToken("good")).Return(int64(7), nil)
	mockRepo.On("Validate", mock.Anything, hashToken("bad")).Return(int64(0), ErrInvalidSession)

	userID, err := service.Validate(context.Background(), "good")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), userID)

	_, err = service.Validate(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = service.Validate(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidSession)
}
