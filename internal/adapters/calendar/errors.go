package calendar

import "errors"

var (
	// ErrNotFound is returned when an event ID is unknown to the provider.
	ErrNotFound = errors.New("calendar: event not found")
	// ErrReadOnly is returned by providers that cannot write.
	ErrReadOnly = errors.New("calendar: provider is read-only")
	// ErrInvalidRange is returned when a listing window ends before it starts.
	ErrInvalidRange = errors.New("calendar: invalid time range")
	// ErrInvalidPlan is returned when a plan cannot become an event.
	ErrInvalidPlan = errors.New("calendar: invalid plan")
	// ErrUnavailable wraps provider transport failures.
	ErrUnavailable = errors.New("calendar: provider unavailable")
)
