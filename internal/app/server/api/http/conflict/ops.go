package conflict

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) checkOp() huma.Operation {
	return huma.Operation{
		OperationID: "conflicts-check",
		Method:      http.MethodPost,
		Path:        "/api/v1/conflicts/check",
		Summary:     "Найти даты, на которые уже есть сабмит",
		Tags:        []string{"conflicts"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) resolveOp() huma.Operation {
	return huma.Operation{
		OperationID: "conflicts-resolve",
		Method:      http.MethodPost,
		Path:        "/api/v1/conflicts/resolve",
		Summary:     "Применить решения по конфликтующим датам",
		Description: "Каждое решение применяется независимо; ошибка одной даты не отменяет остальные",
		Tags:        []string{"conflicts"},
		Middlewares: h.middleware,
	}
}
