package standings

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"stepsync/internal/app/server/api/http/middleware/auth"
	"stepsync/internal/domain/standings"
)

type Handler struct {
	service    standings.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service standings.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.leaderboardOp(), h.leaderboard)
	huma.Register(api, h.gapOp(), h.gap)
	huma.Register(api, h.headToHeadOp(), h.headToHead)
}

func (h *Handler) leaderboard(ctx context.Context, input *leaderboardInput) (*leaderboardOutput, error) {
	if _, ok := auth.GetUserID(ctx); !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	board, err := h.service.Leaderboard(ctx, input.scope(), input.From, input.To)
	if err != nil {
		return nil, h.mapError(err)
	}

	out := &leaderboardOutput{}
	out.Body.Status = "Ok"
	out.Body.Standings = board
	return out, nil
}

func (h *Handler) gap(ctx context.Context, input *gapInput) (*gapOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	report, err := h.service.Gap(ctx, userID, input.scope(), input.From, input.To)
	if err != nil {
		return nil, h.mapError(err)
	}

	out := &gapOutput{}
	out.Body.Status = "Ok"
	out.Body.Gap = *report
	return out, nil
}

func (h *Handler) headToHead(ctx context.Context, input *headToHeadInput) (*headToHeadOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	res, err := h.service.HeadToHead(ctx, input.scope(), userID, input.Opponent, input.From, input.To)
	if err != nil {
		return nil, h.mapError(err)
	}

	out := &headToHeadOutput{}
	out.Body.Status = "Ok"
	out.Body.Result = *res
	return out, nil
}

func (h *Handler) mapError(err error) error {
	if errors.Is(err, standings.ErrInvalidRange) || errors.Is(err, standings.ErrSameUser) {
		return huma.Error400BadRequest(err.Error())
	}
	h.log.Error("standings request failed", "error", err)
	return huma.Error500InternalServerError("failed to compute standings")
}
