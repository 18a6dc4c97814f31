package statestore

import "errors"

var (
	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("statestore: closed")

	ErrEmptyRedisURL   = errors.New("statestore: empty redis URL")
	ErrInvalidRedisURL = errors.New("statestore: invalid redis URL")
	ErrRedisConnect    = errors.New("statestore: redis connection failed")
	ErrRedisUnhealthy  = errors.New("statestore: redis ping failed")
)
