package proof

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"stepsync/internal/domain/proof"
)

func (h *Handler) uploadOp() huma.Operation {
	return huma.Operation{
		OperationID:   "proof-upload",
		Method:        http.MethodPost,
		Path:          "/api/v1/proofs",
		Summary:       "Загрузить скриншот с количеством шагов",
		Description:   "Возвращает путь, который передается в proof_path сабмита",
		Tags:          []string{"proofs"},
		MaxBodyBytes:  proof.MaxSize + 1,
		DefaultStatus: http.StatusCreated,
		Middlewares:   h.middleware,
	}
}
