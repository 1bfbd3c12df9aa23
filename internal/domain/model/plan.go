package model

import "time"

// Frequency is the repeat unit of a recurrence rule.
type Frequency string

// Supported frequencies.
const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
)

// RecurrenceRule describes a repeating event.
type RecurrenceRule struct {
	Frequency  Frequency  `json:"frequency"`
	Interval   int        `json:"interval"`
	DaysOfWeek []Weekday  `json:"daysOfWeek,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	Count      int        `json:"count,omitempty"`
	// RRule is the RFC 5545 rendering, e.g. "FREQ=WEEKLY;BYDAY=TU,TH".
	RRule string `json:"rrule,omitempty"`
}

// ClockRange is a wall-clock window such as 19:00-21:00.
type ClockRange struct {
	Start     string  `json:"start"`
	End       string  `json:"end"`
	DayOfWeek Weekday `json:"dayOfWeek,omitempty"`
}

// Constraints are the avoid/prefer/duration rules derived from a request.
// Durations are minutes; zero means unset.
type Constraints struct {
	AvoidDays      []Weekday    `json:"avoidDays,omitempty"`
	PreferredTimes []ClockRange `json:"preferredTimes,omitempty"`
	MaxDuration    int          `json:"maxDuration,omitempty"`
	MinDuration    int          `json:"minDuration,omitempty"`
}

// Avoids reports whether t falls on an avoided day.
func (c Constraints) Avoids(t time.Time) bool {
	return ContainsWeekday(c.AvoidDays, WeekdayOf(t.Weekday()))
}

// TimeRange is an absolute [Start, End) span.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns End-Start.
func (r TimeRange) Duration() time.Duration { return r.End.Sub(r.Start) }

// Overlaps reports whether the two spans share any instant.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start.Before(o.End) && r.End.After(o.Start)
}

// EventPlan is a candidate scheduled event. Plans are not mutated after
// creation; callers that edit a plan hold their own copy.
type EventPlan struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	StartDateTime time.Time       `json:"startDateTime"`
	EndDateTime   time.Time       `json:"endDateTime"`
	Location      string          `json:"location,omitempty"`
	Attendees     []string        `json:"attendees,omitempty"`
	Recurrence    *RecurrenceRule `json:"recurrence,omitempty"`
	Constraints   Constraints     `json:"constraints"`
	Confidence    float64         `json:"confidence"`
	Explanation   string          `json:"explanation"`
}

// Span returns the plan's time range.
func (p EventPlan) Span() TimeRange {
	return TimeRange{Start: p.StartDateTime, End: p.EndDateTime}
}

// SchedulingRequest is a free-text request plus optional context.
type SchedulingRequest struct {
	UserID               string          `json:"userId"`
	NaturalLanguageInput string          `json:"naturalLanguageInput"`
	Context              *RequestContext `json:"context,omitempty"`
}

// RequestContext carries what the caller already knows.
type RequestContext struct {
	ExistingEvents  []CalendarEvent  `json:"existingEvents,omitempty"`
	UserPreferences *UserPreferences `json:"userPreferences,omitempty"`
}

// UserPreferences are per-user scheduling defaults.
type UserPreferences struct {
	UserID               string     `json:"userId"`
	WorkingHours         ClockRange `json:"workingHours"`
	BreakDuration        int        `json:"breakDuration"`
	PreferredDays        []Weekday  `json:"preferredDays,omitempty"`
	AvoidDays            []Weekday  `json:"avoidDays,omitempty"`
	TimeZone             string     `json:"timeZone,omitempty"`
	DefaultEventDuration int        `json:"defaultEventDuration"`
}
