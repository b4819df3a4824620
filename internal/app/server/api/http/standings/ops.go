package standings

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) leaderboardOp() huma.Operation {
	return huma.Operation{
		OperationID: "standings-leaderboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/standings/leaderboard",
		Summary:     "Рейтинг группы за период",
		Tags:        []string{"standings"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) gapOp() huma.Operation {
	return huma.Operation{
		OperationID: "standings-gap",
		Method:      http.MethodGet,
		Path:        "/api/v1/standings/gap",
		Summary:     "Отставание от лидера и следующего места",
		Tags:        []string{"standings"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) headToHeadOp() huma.Operation {
	return huma.Operation{
		OperationID: "standings-head-to-head",
		Method:      http.MethodGet,
		Path:        "/api/v1/standings/head-to-head",
		Summary:     "Итоги челленджа один на один",
		Tags:        []string{"standings"},
		Middlewares: h.middleware,
	}
}
