package audit

import "errors"

var (
	// ErrStorageNotAvailable indicates the storage backend is unavailable
	ErrStorageNotAvailable = errors.New("storage backend is unavailable")

	// ErrEventValidation indicates event validation failed
	ErrEventValidation = errors.New("event validation failed")

	// ErrBufferFull indicates the sink buffer is full
	ErrBufferFull = errors.New("audit buffer is full")

	// ErrSinkClosed indicates the sink no longer accepts events
	ErrSinkClosed = errors.New("audit sink is closed")
)
