package proof

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"stepsync/internal/app/server/api/http/middleware/auth"
	"stepsync/internal/domain/proof"
)

type Handler struct {
	service    proof.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service proof.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.uploadOp(), h.upload)
}

func (h *Handler) upload(ctx context.Context, input *uploadInput) (*uploadOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	path, err := h.service.Upload(ctx, userID, input.RawBody, input.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, proof.ErrEmpty), errors.Is(err, proof.ErrUnsupported):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		case errors.Is(err, proof.ErrTooLarge):
			return nil, huma.NewError(http.StatusRequestEntityTooLarge, err.Error())
		default:
			h.log.Error("proof upload failed", "user_id", userID, "error", err)
			return nil, huma.Error500InternalServerError("failed to store proof")
		}
	}

	return &uploadOutput{
		Body: uploadResponse{Status: "Ok", Path: path},
	}, nil
}
