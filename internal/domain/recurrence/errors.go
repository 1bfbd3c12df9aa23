package recurrence

import "errors"

var (
	// ErrInvalidRule is returned for rules rrule cannot build or parse.
	ErrInvalidRule = errors.New("invalid recurrence rule")
	// ErrInvalidRange is returned when an expansion window ends before it starts.
	ErrInvalidRange = errors.New("expansion range end is before start")
)
