package client

import "errors"

var (
	ErrStorageFull         = errors.New("local queue storage is full")
	ErrItemNotFound        = errors.New("queue item not found")
	ErrRetriesNotExhausted = errors.New("queue item has retries left")
	ErrNotFailed           = errors.New("queue item is not failed")
	ErrSyncInProgress      = errors.New("sync already in progress")
	// ErrUnavailable сервер недоступен или ответил 5xx; такие ошибки повторяются.
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)
