package submission

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"stepsync/internal/app/server/api/http/middleware/auth"
	"stepsync/internal/domain/submission"
	"stepsync/internal/domain/verification"
)

type Handler struct {
	service    submission.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service submission.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.verifyOp(), h.verify)
}

func (h *Handler) create(ctx context.Context, input *createInput) (*createOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	res, err := h.service.Create(ctx, userID, input.Body)
	if err != nil {
		var conflictErr *submission.ConflictError
		switch {
		case errors.As(err, &conflictErr):
			return &createOutput{
				Status: http.StatusConflict,
				Body: createResponse{
					Status:   "Error",
					Existing: &conflictErr.Existing,
					Error:    err.Error(),
				},
			}, nil
		case errors.Is(err, submission.ErrValidation):
			return &createOutput{
				Status: http.StatusUnprocessableEntity,
				Body:   createResponse{Status: "Error", Error: err.Error()},
			}, nil
		default:
			h.log.Error("create submission failed", "user_id", userID, "error", err)
			return nil, huma.Error500InternalServerError("failed to create submission")
		}
	}

	status := http.StatusAccepted
	if res.Submission.Verified != nil && *res.Submission.Verified {
		status = http.StatusCreated
	}

	return &createOutput{
		Status: status,
		Body: createResponse{
			Status:       "Ok",
			Submission:   res.Submission,
			Verification: res.Outcome,
		},
	}, nil
}

func (h *Handler) verify(ctx context.Context, input *verifyInput) (*verifyOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	outcome, err := h.service.RetryVerification(ctx, userID, input.ID, input.Body)
	if err != nil {
		switch {
		case errors.Is(err, submission.ErrNotFound):
			return nil, huma.Error404NotFound("submission not found")
		case errors.Is(err, submission.ErrForbidden):
			return nil, huma.Error403Forbidden("submission belongs to another user")
		case errors.Is(err, submission.ErrValidation):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		default:
			h.log.Error("retry verification failed", "submission_id", input.ID, "error", err)
			return nil, huma.Error500InternalServerError("failed to verify submission")
		}
	}

	out := &verifyOutput{
		Status: statusForOutcome(outcome),
		Body:   verifyResponse{Status: "Ok", Verification: outcome},
	}
	if outcome.IsRateLimited() {
		out.RetryAfter = strconv.Itoa(outcome.RetryAfter)
	}
	if outcome.Kind == verification.KindFailed {
		out.Body.Status = "Error"
	}

	return out, nil
}

func statusForOutcome(o verification.Outcome) int {
	switch o.Kind {
	case verification.KindConfirmed:
		return http.StatusOK
	case verification.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		if o.ShouldRetry {
			return http.StatusBadGateway
		}
		return http.StatusUnprocessableEntity
	}
}
