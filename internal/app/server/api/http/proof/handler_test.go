package proof

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"

	"stepsync/internal/app/server/api/http/middleware/auth"
	"stepsync/internal/domain/proof"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Upload(ctx context.Context, userID int64, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, userID, data, contentType)
	return args.String(0), args.Error(1)
}

func setup(t *testing.T, svc *MockService) humatest.TestAPI {
	_, api := humatest.New(t)
	withUser := func(ctx huma.Context, next func(huma.Context)) {
		next(huma.WithContext(ctx, auth.WithUserID(ctx.Context(), 3)))
	}
	NewHandler(svc, slog.Default(), huma.Middlewares{withUser}).SetupRoutes(api)
	return api
}

func TestHandler_Upload(t *testing.T) {
	svc := new(MockService)
	api := setup(t, svc)

	svc.On("Upload", mock.Anything, int64(3), []byte("image-bytes"), "image/png").
		Return("proofs/3/2025/03/01/x.png", nil)

	resp := api.Post("/api/v1/proofs", "Content-Type: image/png", strings.NewReader("image-bytes"))

	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), `"path":"proofs/3/2025/03/01/x.png"`)
}

func TestHandler_Upload_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not an image", proof.ErrUnsupported, http.StatusUnprocessableEntity},
		{"too large", proof.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{"store failure", errors.New("bucket missing"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			api := setup(t, svc)

			svc.On("Upload", mock.Anything, int64(3), mock.Anything, mock.Anything).Return("", tt.err)

			resp := api.Post("/api/v1/proofs", "Content-Type: image/png", strings.NewReader("x"))

			assert.Equal(t, tt.wantStatus, resp.Code)
		})
	}
}
