package conflict

import "stepsync/internal/domain/submission"

// Action действие для конфликтующей даты.
type Action string

const (
	ActionKeepExisting Action = "keep_existing"
	ActionUseIncoming  Action = "use_incoming"
	ActionSkip         Action = "skip"
)

func (a Action) Valid() bool {
	switch a {
	case ActionKeepExisting, ActionUseIncoming, ActionSkip:
		return true
	}
	return false
}

// Source откуда клиент получил входящее значение.
type Source string

const (
	SourceExtraction Source = "extraction"
	SourceManual     Source = "manual"
)

// Candidate дата, которую клиент собирается отправить.
type Candidate struct {
	Date     string `json:"date"`
	HasProof bool   `json:"has_proof"`
	Source   Source `json:"source,omitempty"`
}

// Info конфликт: на дату уже есть запись.
type Info struct {
	Date      string              `json:"date"`
	Existing  submission.Snapshot `json:"existing"`
	Source    Source              `json:"source,omitempty"`
	Suggested Action              `json:"suggested_action"`
}

type IncomingData struct {
	Steps     int     `json:"steps"`
	ProofPath *string `json:"proof_path,omitempty"`
	Partial   bool    `json:"partial,omitempty"`
}

// Resolution явное решение клиента по одной дате.
type Resolution struct {
	Date     string        `json:"date"`
	Action   Action        `json:"action"`
	Incoming *IncomingData `json:"incoming,omitempty"`
}

type EntryResult struct {
	Date    string `json:"date"`
	Action  Action `json:"action"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ResolveResult Resolved считает успешные решения, кроме skip.
type ResolveResult struct {
	Resolved int           `json:"resolved"`
	Results  []EntryResult `json:"results"`
}
