package api

import (
	"errors"
	"net/http"

	"github.com/okian/studyplan/internal/adapters/calendar"
	"github.com/okian/studyplan/internal/adapters/export"
	"github.com/okian/studyplan/internal/adapters/repository"
	service "github.com/okian/studyplan/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrNotReady   = errors.New("not ready")
)

// Error is a failure of a named handler operation.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind attaches op and kind to err.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// classify maps domain and adapter errors onto a status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, calendar.ErrInvalidPlan),
		errors.Is(err, calendar.ErrInvalidRange),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, repository.ErrInvalidRecord):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNoEvents),
		errors.Is(err, export.ErrNoEvents):
		return http.StatusNotFound, "no_events"
	case errors.Is(err, ErrNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, calendar.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, calendar.ErrReadOnly):
		return http.StatusConflict, "conflict"
	case errors.Is(err, calendar.ErrUnavailable):
		return http.StatusBadGateway, "upstream_unavailable"
	case errors.Is(err, ErrNotReady):
		return http.StatusServiceUnavailable, "not_ready"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
