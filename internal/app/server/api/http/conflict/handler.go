package conflict

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"stepsync/internal/app/server/api/http/middleware/auth"
	"stepsync/internal/domain/conflict"
)

type Handler struct {
	service    conflict.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service conflict.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.checkOp(), h.check)
	huma.Register(api, h.resolveOp(), h.resolve)
}

func (h *Handler) check(ctx context.Context, input *checkInput) (*checkOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	conflicts, err := h.service.Check(ctx, userID, input.Body.ScopeID, input.Body.Candidates)
	if err != nil {
		h.log.Error("conflict check failed", "user_id", userID, "error", err)
		return nil, huma.Error500InternalServerError("failed to check conflicts")
	}

	return &checkOutput{
		Body: checkResponse{Status: "Ok", Conflicts: conflicts},
	}, nil
}

func (h *Handler) resolve(ctx context.Context, input *resolveInput) (*resolveOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	res, err := h.service.Resolve(ctx, userID, input.Body.ScopeID, input.Body.Resolutions)
	if err != nil {
		h.log.Error("conflict resolve failed", "user_id", userID, "error", err)
		return nil, huma.Error500InternalServerError("failed to resolve conflicts")
	}

	return &resolveOutput{
		Body: resolveResponse{Status: "Ok", ResolveResult: *res},
	}, nil
}
