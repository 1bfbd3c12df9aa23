package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/okian/studyplan/internal/adapters/calendar"
	"github.com/okian/studyplan/internal/adapters/export"
	"github.com/okian/studyplan/internal/adapters/repository"
	service "github.com/okian/studyplan/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given errors from every layer", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{WrapKind("op", ErrBadRequest, errors.New("boom")), http.StatusBadRequest, "bad_request"},
			{fmt.Errorf("x: %w", service.ErrInvalidInput), http.StatusBadRequest, "bad_request"},
			{export.ErrUnknownFormat, http.StatusBadRequest, "bad_request"},
			{export.ErrNoEvents, http.StatusNotFound, "no_events"},
			{fmt.Errorf("delete event e1: %w", calendar.ErrNotFound), http.StatusNotFound, "not_found"},
			{repository.ErrNotFound, http.StatusNotFound, "not_found"},
			{service.ErrInvalidTransition, http.StatusConflict, "conflict"},
			{calendar.ErrReadOnly, http.StatusConflict, "conflict"},
			{fmt.Errorf("create event: %w", calendar.ErrUnavailable), http.StatusBadGateway, "upstream_unavailable"},
			{NewKind("op", ErrNotReady), http.StatusServiceUnavailable, "not_ready"},
			{errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
		}
		for _, tc := range cases {
			status, code := classify(tc.err)
			So(status, ShouldEqual, tc.status)
			So(code, ShouldEqual, tc.code)
		}
	})
}

func TestKindErrors(t *testing.T) {
	Convey("Given a wrapped kind", t, func() {
		cause := errors.New("unexpected EOF")
		err := WrapKind("api.planner_analyze", ErrBadRequest, cause)

		So(err.Error(), ShouldEqual, "api.planner_analyze: bad request: unexpected EOF")
		So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
	})

	Convey("Given a bare kind", t, func() {
		err := NewKind("api.health", ErrNotReady)
		So(err.Error(), ShouldEqual, "api.health: not ready")
		So(errors.Is(err, ErrNotReady), ShouldBeTrue)
		So(errors.Is(err, ErrBadRequest), ShouldBeFalse)
	})
}
