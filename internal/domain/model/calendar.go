package model

import "time"

// EventSource tells where a calendar event came from.
type EventSource string

// Event sources.
const (
	SourceGoogle    EventSource = "GOOGLE_CALENDAR"
	SourceImported  EventSource = "IMPORTED"
	SourceGenerated EventSource = "GENERATED"
)

// EventTime mirrors the provider shape {dateTime, timeZone}.
type EventTime struct {
	DateTime time.Time `json:"dateTime"`
	TimeZone string    `json:"timeZone,omitempty"`
}

// CalendarEvent is an event held by an external calendar.
type CalendarEvent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Start       EventTime   `json:"start"`
	End         EventTime   `json:"end"`
	Location    string      `json:"location,omitempty"`
	Attendees   []string    `json:"attendees,omitempty"`
	Recurrence  []string    `json:"recurrence,omitempty"`
	Source      EventSource `json:"source,omitempty"`
}

// Span returns the event's time range.
func (e CalendarEvent) Span() TimeRange {
	return TimeRange{Start: e.Start.DateTime, End: e.End.DateTime}
}

// ConflictType classifies a conflict.
type ConflictType string

// Conflict types.
const (
	ConflictOverlap             ConflictType = "OVERLAP"
	ConflictAdjacent            ConflictType = "ADJACENT"
	ConflictConstraintViolation ConflictType = "CONSTRAINT_VIOLATION"
)

// Severity ranks a conflict.
type Severity string

// Severities.
const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// CalendarConflict is derived during a check and never stored.
type CalendarConflict struct {
	EventID      string       `json:"eventId"`
	Title        string       `json:"title"`
	Start        time.Time    `json:"start"`
	End          time.Time    `json:"end"`
	ConflictType ConflictType `json:"conflictType"`
	Severity     Severity     `json:"severity"`
}

// EventAlternative is a shifted plan with its score. Rank is 1-based and dense.
type EventAlternative struct {
	Rank      int       `json:"rank"`
	Plan      EventPlan `json:"plan"`
	Score     float64   `json:"score"`
	Reasoning string    `json:"reasoning"`
	Tradeoffs []string  `json:"tradeoffs"`
}

// ConflictResolution is the result of a conflict check.
type ConflictResolution struct {
	Conflicts      []CalendarConflict `json:"conflicts"`
	Alternatives   []EventAlternative `json:"alternatives"`
	Recommendation string             `json:"recommendation"`
}
