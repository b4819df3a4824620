package submission

import "time"

// DateLayout формат календарной даты сабмита.
const DateLayout = "2006-01-02"

// Submission дневная запись количества шагов пользователя.
type Submission struct {
	ID                int64              `json:"id"`
	UserID            int64              `json:"user_id"`
	ScopeID           *int64             `json:"scope_id,omitempty"`
	ForDate           string             `json:"for_date"`
	Steps             int                `json:"steps"`
	Partial           bool               `json:"partial"`
	ProofPath         *string            `json:"proof_path,omitempty"`
	Verified          *bool              `json:"verified"`
	ToleranceUsed     *float64           `json:"tolerance_used,omitempty"`
	Extracted         map[string]float64 `json:"extracted,omitempty"`
	VerificationNotes *string            `json:"verification_notes,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// Snapshot краткое представление существующей записи, которое видит клиент при конфликте.
type Snapshot struct {
	ID        int64   `json:"id"`
	ForDate   string  `json:"for_date"`
	Steps     int     `json:"steps"`
	Partial   bool    `json:"partial"`
	ProofPath *string `json:"proof_path,omitempty"`
	Verified  *bool   `json:"verified"`
}

func (s *Submission) Snapshot() Snapshot {
	return Snapshot{
		ID:        s.ID,
		ForDate:   s.ForDate,
		Steps:     s.Steps,
		Partial:   s.Partial,
		ProofPath: s.ProofPath,
		Verified:  s.Verified,
	}
}

// HasProof сообщает, приложено ли к записи доказательство.
func (s Snapshot) HasProof() bool {
	return s.ProofPath != nil && *s.ProofPath != ""
}

// IsVerified true только для подтвержденной записи; null и false считаются неподтвержденными.
func (s Snapshot) IsVerified() bool {
	return s.Verified != nil && *s.Verified
}

// VerificationUpdate поля, которые меняет шаг проверки.
type VerificationUpdate struct {
	Verified      *bool
	Steps         *int
	ToleranceUsed *float64
	Extracted     map[string]float64
	Notes         *string
}

// Policy определяет, что делать при совпадении (user, scope, date).
type Policy int

const (
	// PolicyReject путь создания: конфликт возвращается вызывающему.
	PolicyReject Policy = iota
	// PolicyKeepExisting оставляет существующую запись без изменений.
	PolicyKeepExisting
	// PolicyUseIncoming перезаписывает steps, proof_path, partial и заново запускает проверку.
	PolicyUseIncoming
)

func (p Policy) String() string {
	switch p {
	case PolicyReject:
		return "reject"
	case PolicyKeepExisting:
		return "keep_existing"
	case PolicyUseIncoming:
		return "use_incoming"
	default:
		return "unknown"
	}
}
