package model

import "time"

// AuditAction names an audited operation.
type AuditAction string

// Audited actions.
const (
	ActionCreateEvent       AuditAction = "CREATE_EVENT"
	ActionUpdateEvent       AuditAction = "UPDATE_EVENT"
	ActionDeleteEvent       AuditAction = "DELETE_EVENT"
	ActionCheckConflicts    AuditAction = "CHECK_CONFLICTS"
	ActionAnalyzeRequest    AuditAction = "ANALYZE_REQUEST"
	ActionUploadSyllabus    AuditAction = "UPLOAD_SYLLABUS"
	ActionUpdatePreferences AuditAction = "UPDATE_PREFERENCES"
	ActionImportEvents      AuditAction = "IMPORT_EVENTS"
)

// AuditStatus is the outcome of an audited operation.
type AuditStatus string

// Audit statuses.
const (
	StatusPending   AuditStatus = "PENDING"
	StatusSuccess   AuditStatus = "SUCCESS"
	StatusFailed    AuditStatus = "FAILED"
	StatusCancelled AuditStatus = "CANCELLED"
)

// AuditEntry is one line of the audit log.
type AuditEntry struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	Action     AuditAction       `json:"action"`
	Status     AuditStatus       `json:"status"`
	Details    map[string]string `json:"details,omitempty"`
	Error      string            `json:"error,omitempty"`
	DurationMs int64             `json:"durationMs"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// SessionStatus tracks a scheduling conversation.
type SessionStatus string

// Session statuses in the order a session normally moves through them.
const (
	SessionStarted       SessionStatus = "STARTED"
	SessionAnalyzing     SessionStatus = "ANALYZING"
	SessionPlanning      SessionStatus = "PLANNING"
	SessionConflictCheck SessionStatus = "CONFLICT_CHECK"
	SessionUserReview    SessionStatus = "USER_REVIEW"
	SessionConfirmed     SessionStatus = "CONFIRMED"
	SessionCompleted     SessionStatus = "COMPLETED"
	SessionCancelled     SessionStatus = "CANCELLED"
	SessionFailed        SessionStatus = "FAILED"
)

// Terminal reports whether no further transitions are allowed.
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionCompleted, SessionCancelled, SessionFailed:
		return true
	}
	return false
}

// SchedulingSession links one request to the plans produced for it.
type SchedulingSession struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Input     string        `json:"input"`
	Status    SessionStatus `json:"status"`
	PlanIDs   []string      `json:"planIds,omitempty"`
	Path      string        `json:"path,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
