package submission

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "submission-create",
		Method:        http.MethodPost,
		Path:          "/api/v1/submissions",
		Summary:       "Создать сабмит",
		Description:   "201: создан и подтвержден, 202: создан, проверка не завершена, 409: запись на дату уже есть",
		Tags:          []string{"submissions"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusConflict, http.StatusUnprocessableEntity},
		Middlewares:   h.middleware,
	}
}

func (h *Handler) verifyOp() huma.Operation {
	return huma.Operation{
		OperationID: "submission-verify",
		Method:      http.MethodPost,
		Path:        "/api/v1/submissions/{id}/verify",
		Summary:     "Повторить проверку сабмита",
		Tags:        []string{"submissions"},
		Errors:      []int{http.StatusTooManyRequests, http.StatusUnprocessableEntity, http.StatusBadGateway},
		Middlewares: h.middleware,
	}
}
