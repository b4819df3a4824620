package submission

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("submission not found")
	ErrAlreadyExists = errors.New("submission already exists for date")
	ErrValidation    = errors.New("invalid submission")
	ErrForbidden     = errors.New("submission belongs to another user")
)

// ConflictError возвращается путем создания, если на дату уже есть запись.
type ConflictError struct {
	Existing Snapshot
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("submission already exists for %s (id=%d)", e.Existing.ForDate, e.Existing.ID)
}

func (e *ConflictError) Unwrap() error {
	return ErrAlreadyExists
}
