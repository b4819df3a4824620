package conflict

import "errors"

var (
	ErrNoExisting      = errors.New("no existing submission for date")
	ErrIncomingMissing = errors.New("incoming data is required for use_incoming")
	ErrUnknownAction   = errors.New("unknown resolution action")
	ErrDateRequired    = errors.New("date is required")
)
