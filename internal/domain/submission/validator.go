package submission

import (
	"fmt"
	"strings"
	"time"
)

const (
	MaxSteps = 200000
	// MaxFutureDays допуск на часовые пояса клиента.
	MaxFutureDays = 1
)

// Validator проверяет полезную нагрузку сабмита до обращения к хранилищу.
type Validator interface {
	Validate(in Input) error
}

type InputValidator struct {
	now func() time.Time
}

func NewValidator() *InputValidator {
	return &InputValidator{now: time.Now}
}

// Validate все ошибки оборачивают ErrValidation.
func (v *InputValidator) Validate(in Input) error {
	date, err := time.Parse(DateLayout, in.ForDate)
	if err != nil {
		return fmt.Errorf("%w: for_date must be YYYY-MM-DD", ErrValidation)
	}

	today := v.now().UTC().Truncate(24 * time.Hour)
	if date.After(today.AddDate(0, 0, MaxFutureDays)) {
		return fmt.Errorf("%w: for_date %s is in the future", ErrValidation, in.ForDate)
	}

	if in.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive", ErrValidation)
	}
	if in.Steps > MaxSteps {
		return fmt.Errorf("%w: steps must be at most %d", ErrValidation, MaxSteps)
	}

	if in.ProofPath != nil && strings.Contains(*in.ProofPath, "..") {
		return fmt.Errorf("%w: invalid proof path", ErrValidation)
	}

	if in.ScopeID != nil && *in.ScopeID <= 0 {
		return fmt.Errorf("%w: scope_id must be positive", ErrValidation)
	}

	return nil
}
