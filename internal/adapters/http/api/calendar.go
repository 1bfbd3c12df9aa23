package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/studyplan/internal/domain/model"
)

// defaultListSpan is the GET /calendar/list window when to is omitted.
const defaultListSpan = 7 * 24 * time.Hour

// CalendarDependencies is what the calendar routes need.
type CalendarDependencies interface {
	CheckConflicts(ctx context.Context, userID string, plan model.EventPlan, existing []model.CalendarEvent) (model.ConflictResolution, error)
	CreateEvent(ctx context.Context, userID string, plan model.EventPlan) (model.CalendarEvent, error)
	UpdateEvent(ctx context.Context, userID, id string, plan model.EventPlan) (model.CalendarEvent, error)
	DeleteEvent(ctx context.Context, userID, id string) error
	ListEvents(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error)
}

// CalendarHandler handles conflict checks and calendar writes.
type CalendarHandler struct {
	deps CalendarDependencies
	now  func() time.Time
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(deps CalendarDependencies) *CalendarHandler {
	return &CalendarHandler{deps: deps, now: time.Now}
}

// calendarRequest is the body of every calendar write. ExistingEvents is
// only read by conflict checks; null or absent means fetch from the
// calendar, while an empty list means check against nothing.
type calendarRequest struct {
	UserID         string                `json:"userId"`
	EventID        string                `json:"eventId"`
	EventPlan      *model.EventPlan      `json:"eventPlan"`
	ExistingEvents []model.CalendarEvent `json:"existingEvents"`
}

func (c calendarRequest) validate(needPlan, needID bool) error {
	switch {
	case strings.TrimSpace(c.UserID) == "":
		return errors.New("missing userId")
	case needPlan && c.EventPlan == nil:
		return errors.New("missing eventPlan")
	case needID && strings.TrimSpace(c.EventID) == "":
		return errors.New("missing eventId")
	}
	return nil
}

type deleteResponse struct {
	Status  string `json:"status"`
	EventID string `json:"eventId"`
}

type listResponse struct {
	Events []model.CalendarEvent `json:"events"`
	From   time.Time             `json:"from"`
	To     time.Time             `json:"to"`
	Count  int                   `json:"count"`
}

func (h *CalendarHandler) read(w http.ResponseWriter, r *http.Request, op string, needPlan, needID bool) (calendarRequest, bool) {
	var req calendarRequest
	if err := decode(w, r, op, &req); err != nil {
		respond(w, r, op, err)
		return req, false
	}
	if err := req.validate(needPlan, needID); err != nil {
		respond(w, r, op, WrapKind(op, ErrBadRequest, err))
		return req, false
	}
	return req, true
}

// HandleConflicts handles POST /calendar/conflicts.
func (h *CalendarHandler) HandleConflicts(w http.ResponseWriter, r *http.Request) {
	const op = "api.calendar_conflicts"
	if !allow(w, r, http.MethodPost) {
		return
	}
	req, ok := h.read(w, r, op, true, false)
	if !ok {
		return
	}
	res, err := h.deps.CheckConflicts(r.Context(), req.UserID, *req.EventPlan, req.ExistingEvents)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleCreate handles POST /calendar/create.
func (h *CalendarHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.calendar_create"
	if !allow(w, r, http.MethodPost) {
		return
	}
	req, ok := h.read(w, r, op, true, false)
	if !ok {
		return
	}
	ev, err := h.deps.CreateEvent(r.Context(), req.UserID, *req.EventPlan)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// HandleUpdate handles POST /calendar/update.
func (h *CalendarHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.calendar_update"
	if !allow(w, r, http.MethodPost, http.MethodPut) {
		return
	}
	req, ok := h.read(w, r, op, true, true)
	if !ok {
		return
	}
	ev, err := h.deps.UpdateEvent(r.Context(), req.UserID, req.EventID, *req.EventPlan)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// HandleDelete handles POST /calendar/delete.
func (h *CalendarHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.calendar_delete"
	if !allow(w, r, http.MethodPost, http.MethodDelete) {
		return
	}
	req, ok := h.read(w, r, op, false, true)
	if !ok {
		return
	}
	if err := h.deps.DeleteEvent(r.Context(), req.UserID, req.EventID); err != nil {
		respond(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Status: "deleted", EventID: req.EventID})
}

// HandleList handles GET /calendar/list?from=&to= with RFC 3339 bounds.
// from defaults to the start of the current UTC day and to to a week later.
func (h *CalendarHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.calendar_list"
	if !allow(w, r, http.MethodGet) {
		return
	}
	now := h.now().UTC()
	from, err := timeParam(r, op, "from", time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
	if err != nil {
		respond(w, r, op, err)
		return
	}
	to, err := timeParam(r, op, "to", from.Add(defaultListSpan))
	if err != nil {
		respond(w, r, op, err)
		return
	}
	if !to.After(from) {
		respond(w, r, op, WrapKind(op, ErrBadRequest, errors.New("to must be after from")))
		return
	}
	events, err := h.deps.ListEvents(r.Context(), from, to)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	if events == nil {
		events = []model.CalendarEvent{}
	}
	writeJSON(w, http.StatusOK, listResponse{Events: events, From: from, To: to, Count: len(events)})
}

func timeParam(r *http.Request, op, name string, def time.Time) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, WrapKind(op, ErrBadRequest, fmt.Errorf("invalid %s; must be RFC3339", name))
	}
	return t, nil
}
