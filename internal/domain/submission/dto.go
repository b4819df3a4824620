package submission

import "stepsync/internal/domain/verification"

// Input полезная нагрузка сабмита от клиента.
type Input struct {
	ScopeID   *int64  `json:"scope_id,omitempty"`
	ForDate   string  `json:"for_date"`
	Steps     int     `json:"steps"`
	Partial   bool    `json:"partial,omitempty"`
	ProofPath *string `json:"proof_path,omitempty"`
}

// CreateResult итог создания или перезаписи.
// Outcome пустой, если проверка не запускалась (PolicyKeepExisting).
type CreateResult struct {
	Submission *Submission           `json:"submission"`
	Outcome    *verification.Outcome `json:"verification,omitempty"`
	Applied    bool                  `json:"applied"`
}
