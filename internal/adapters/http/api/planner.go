package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/studyplan/internal/app"
	"github.com/okian/studyplan/internal/domain/model"
)

// PlannerDependencies is what the planner routes need.
type PlannerDependencies interface {
	Analyze(ctx context.Context, req model.SchedulingRequest) (service.AnalyzeResult, error)
	ValidatePlan(plan model.EventPlan) []string
	Session(ctx context.Context, id string) (model.SchedulingSession, error)
	UpdateSession(ctx context.Context, id string, status model.SessionStatus) (model.SchedulingSession, error)
}

// PlannerHandler handles natural language planning requests.
type PlannerHandler struct {
	deps PlannerDependencies
}

// NewPlannerHandler creates a new planner handler.
func NewPlannerHandler(deps PlannerDependencies) *PlannerHandler {
	return &PlannerHandler{deps: deps}
}

type validateRequest struct {
	EventPlan *model.EventPlan `json:"eventPlan"`
}

type validateResponse struct {
	IsValid   bool            `json:"isValid"`
	Issues    []string        `json:"issues"`
	EventPlan model.EventPlan `json:"eventPlan"`
}

type sessionStatusRequest struct {
	SessionID string              `json:"sessionId"`
	Status    model.SessionStatus `json:"status"`
}

// HandleAnalyze handles POST /planner/analyze.
func (h *PlannerHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.planner_analyze"
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req model.SchedulingRequest
	if err := decode(w, r, op, &req); err != nil {
		respond(w, r, op, err)
		return
	}
	res, err := h.deps.Analyze(r.Context(), req)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleValidate handles POST /planner/validate. An invalid plan is still a
// 200; the issues are in the body.
func (h *PlannerHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.planner_validate"
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req validateRequest
	if err := decode(w, r, op, &req); err != nil {
		respond(w, r, op, err)
		return
	}
	if req.EventPlan == nil {
		respond(w, r, op, WrapKind(op, ErrBadRequest, errors.New("missing eventPlan")))
		return
	}
	issues := h.deps.ValidatePlan(*req.EventPlan)
	if issues == nil {
		issues = []string{}
	}
	writeJSON(w, http.StatusOK, validateResponse{
		IsValid:   len(issues) == 0,
		Issues:    issues,
		EventPlan: *req.EventPlan,
	})
}

// HandleSession handles GET /planner/session?id= and POST /planner/session
// status changes.
func (h *PlannerHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.planner_session"
	if !allow(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		id, err := required(r, op, "id")
		if err != nil {
			respond(w, r, op, err)
			return
		}
		session, err := h.deps.Session(r.Context(), id)
		if err != nil {
			respond(w, r, op, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
		return
	}

	var req sessionStatusRequest
	if err := decode(w, r, op, &req); err != nil {
		respond(w, r, op, err)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		respond(w, r, op, WrapKind(op, ErrBadRequest, errors.New("missing sessionId")))
		return
	}
	session, err := h.deps.UpdateSession(r.Context(), req.SessionID, req.Status)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}
