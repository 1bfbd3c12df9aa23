package service

import "errors"

var (
	// ErrInvalidInput is returned when a request misses required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoEvents is returned when an import selects no known event.
	ErrNoEvents = errors.New("no matching events")
	// ErrInvalidTransition is returned when a session cannot move to a status.
	ErrInvalidTransition = errors.New("invalid session transition")
)
