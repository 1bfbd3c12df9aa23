// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/studyplan/pkg/logger"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Each handler only sees the slice
// of the service it needs.
type Dependencies interface {
	PlannerDependencies
	CalendarDependencies
	SyllabusDependencies
	AccountDependencies

	// Ready reports whether the backing store can serve requests.
	Ready(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	plannerHandler  *PlannerHandler
	calendarHandler *CalendarHandler
	syllabusHandler *SyllabusHandler
	accountHandler  *AccountHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(deps),
		statsHandler:    NewStatsHandler(statsProvider),
		plannerHandler:  NewPlannerHandler(deps),
		calendarHandler: NewCalendarHandler(deps),
		syllabusHandler: NewSyllabusHandler(deps),
		accountHandler:  NewAccountHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	routes := []struct {
		path     string
		endpoint string
		handler  http.HandlerFunc
	}{
		{"/health", "health", s.healthHandler.HandleReady},
		{"/healthz", "healthz", s.healthHandler.HandleMetrics},
		{"/stats", "stats", s.statsHandler.HandleStats},

		{"/planner/analyze", "planner_analyze", s.plannerHandler.HandleAnalyze},
		{"/planner/validate", "planner_validate", s.plannerHandler.HandleValidate},
		{"/planner/session", "planner_session", s.plannerHandler.HandleSession},

		{"/calendar/conflicts", "calendar_conflicts", s.calendarHandler.HandleConflicts},
		{"/calendar/create", "calendar_create", s.calendarHandler.HandleCreate},
		{"/calendar/list", "calendar_list", s.calendarHandler.HandleList},
		{"/calendar/update", "calendar_update", s.calendarHandler.HandleUpdate},
		{"/calendar/delete", "calendar_delete", s.calendarHandler.HandleDelete},

		{"/syllabus/upload", "syllabus_upload", s.syllabusHandler.HandleUpload},
		{"/syllabus/search", "syllabus_search", s.syllabusHandler.HandleSearch},
		{"/syllabus/upcoming", "syllabus_upcoming", s.syllabusHandler.HandleUpcoming},
		{"/syllabus/snippets", "syllabus_snippets", s.syllabusHandler.HandleSnippets},
		{"/syllabus/import-events", "syllabus_import", s.syllabusHandler.HandleImport},
		{"/syllabus/export", "syllabus_export", s.syllabusHandler.HandleExport},

		{"/audit", "audit", s.accountHandler.HandleAudit},
		{"/preferences", "preferences", s.accountHandler.HandlePreferences},
	}
	for _, rt := range routes {
		mux.HandleFunc(rt.path, MetricsMiddleware(LoggingMiddleware(rt.handler, rt.endpoint), rt.endpoint))
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// respond writes err with the status its kind maps to. Server-side failures
// are logged and their detail is not sent to the client.
func respond(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.Int("status", status),
			logger.Error(err))
		if status == http.StatusInternalServerError {
			err = nil
		}
	}
	writeError(w, status, code, err)
}

// decode reads a JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, op string, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// allow answers 405 unless r uses one of methods.
func allow(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	return false
}

// required returns the trimmed query parameter name or a bad request error.
func required(r *http.Request, op, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", WrapKind(op, ErrBadRequest, fmt.Errorf("missing %s", name))
	}
	return v, nil
}

// intParam parses an optional positive integer query parameter.
func intParam(r *http.Request, op, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, WrapKind(op, ErrBadRequest, errors.New(name+" must be a positive integer"))
	}
	return n, nil
}
