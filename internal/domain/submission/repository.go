package submission

import "context"

// Repository хранилище сабмитов
type Repository interface {
	// Insert возвращает ErrAlreadyExists, если запись на (user, scope, date) уже есть.
	Insert(ctx context.Context, s *Submission) (int64, error)
	Get(ctx context.Context, id int64) (*Submission, error)
	FindByDate(ctx context.Context, userID int64, scopeID *int64, date string) (*Submission, error)
	FindByDates(ctx context.Context, userID int64, scopeID *int64, dates []string) ([]Submission, error)

	// ReplacePayload перезаписывает steps, proof_path, partial и сбрасывает поля проверки.
	ReplacePayload(ctx context.Context, id int64, in Input) error
	ApplyVerification(ctx context.Context, id int64, upd VerificationUpdate) error
}
