package api

import (
	"context"
	"net/http"

	"github.com/okian/studyplan/internal/domain/model"
)

// defaultAuditLimit caps GET /audit when no limit is given.
const defaultAuditLimit = 50

// AccountDependencies is what the audit and preference routes need.
type AccountDependencies interface {
	Audit(ctx context.Context, userID string, limit int) ([]model.AuditEntry, error)
	Preferences(ctx context.Context, userID string) (model.UserPreferences, error)
	SavePreferences(ctx context.Context, prefs model.UserPreferences) (model.UserPreferences, error)
}

// AccountHandler handles per-user audit history and preferences.
type AccountHandler struct {
	deps AccountDependencies
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(deps AccountDependencies) *AccountHandler {
	return &AccountHandler{deps: deps}
}

type auditResponse struct {
	Entries []model.AuditEntry `json:"entries"`
	Count   int                `json:"count"`
}

// HandleAudit handles GET /audit?userId=&limit=, newest first.
func (h *AccountHandler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	const op = "api.audit"
	if !allow(w, r, http.MethodGet) {
		return
	}
	userID, err := required(r, op, "userId")
	if err != nil {
		respond(w, r, op, err)
		return
	}
	limit, err := intParam(r, op, "limit", defaultAuditLimit)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	entries, err := h.deps.Audit(r.Context(), userID, limit)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, auditResponse{Entries: entries, Count: len(entries)})
}

// HandlePreferences handles GET /preferences?userId= and POST /preferences.
func (h *AccountHandler) HandlePreferences(w http.ResponseWriter, r *http.Request) {
	const op = "api.preferences"
	if !allow(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		userID, err := required(r, op, "userId")
		if err != nil {
			respond(w, r, op, err)
			return
		}
		prefs, err := h.deps.Preferences(r.Context(), userID)
		if err != nil {
			respond(w, r, op, err)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
		return
	}

	var prefs model.UserPreferences
	if err := decode(w, r, op, &prefs); err != nil {
		respond(w, r, op, err)
		return
	}
	if prefs.UserID == "" {
		respond(w, r, op, NewKind(op, ErrBadRequest))
		return
	}
	saved, err := h.deps.SavePreferences(r.Context(), prefs)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
