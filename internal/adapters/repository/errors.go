package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("repository: not found")
	ErrInvalidRecord = errors.New("repository: invalid record")
	ErrUnknownDriver = errors.New("repository: unknown driver")
)
