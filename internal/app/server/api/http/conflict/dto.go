package conflict

import "stepsync/internal/domain/conflict"

type checkInput struct {
	Body checkRequest
}

type checkRequest struct {
	ScopeID    *int64               `json:"scope_id,omitempty" doc:"Группа или челлендж; пусто: личный зачет"`
	Candidates []conflict.Candidate `json:"candidates" maxItems:"366"`
}

type checkOutput struct {
	Body checkResponse
}

type checkResponse struct {
	Status    string          `json:"status"`
	Conflicts []conflict.Info `json:"conflicts"`
}

type resolveInput struct {
	Body resolveRequest
}

type resolveRequest struct {
	ScopeID     *int64                `json:"scope_id,omitempty"`
	Resolutions []conflict.Resolution `json:"resolutions" maxItems:"366"`
}

type resolveOutput struct {
	Body resolveResponse
}

type resolveResponse struct {
	Status string `json:"status"`
	conflict.ResolveResult
}
