package standings

import "stepsync/internal/domain/standings"

type RangeParams struct {
	ScopeID int64  `query:"scope_id" doc:"Группа или челлендж; 0: личный зачет"`
	From    string `query:"from" required:"true" example:"2025-03-01"`
	To      string `query:"to" required:"true" example:"2025-03-31"`
}

func (p RangeParams) scope() *int64 {
	if p.ScopeID <= 0 {
		return nil
	}
	id := p.ScopeID
	return &id
}

type leaderboardInput struct {
	RangeParams
}

type leaderboardOutput struct {
	Body struct {
		Status    string               `json:"status"`
		Standings []standings.Standing `json:"standings"`
	}
}

type gapInput struct {
	RangeParams
}

type gapOutput struct {
	Body struct {
		Status string              `json:"status"`
		Gap    standings.GapReport `json:"gap"`
	}
}

type headToHeadInput struct {
	RangeParams
	Opponent int64 `query:"opponent" required:"true" doc:"ID соперника"`
}

type headToHeadOutput struct {
	Body struct {
		Status string                     `json:"status"`
		Result standings.HeadToHeadResult `json:"result"`
	}
}
