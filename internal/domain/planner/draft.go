package planner

import (
	"github.com/okian/studyplan/internal/domain/constraint"
	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/temporal"
)

// Source tells which extractor produced a Draft.
type Source string

const (
	// SourceHeuristic is the rule-based extractor.
	SourceHeuristic Source = "heuristic"
	// SourceEnhanced is an external (LLM) extractor.
	SourceEnhanced Source = "llm"
)

// Draft is an extracted request, ready for slot generation. Both the
// rule-based extractor and external extractors produce one.
type Draft struct {
	Input       string
	Title       string
	Duration    int
	Times       []temporal.Clock
	TimeLabels  []string
	Days        []model.Weekday
	Frequency   model.Frequency
	Recurring   bool
	Constraints model.Constraints
	Location    string
	Attendees   []string
	Source      Source
}

// DraftFromSignals converts rule-based signals into a Draft. Preferences, when
// present, add their avoid days and supply a default duration.
func DraftFromSignals(s constraint.Signals, prefs *model.UserPreferences) Draft {
	d := Draft{
		Input:       s.Input,
		Title:       s.Title,
		Duration:    s.DurationMinutes(),
		Days:        s.Days,
		Frequency:   s.Frequency,
		Recurring:   s.Recurring,
		Constraints: s.Constraints,
		Location:    s.Location,
		Attendees:   s.Attendees,
		Source:      SourceHeuristic,
	}
	hasRange := false
	for _, t := range s.Times {
		d.Times = append(d.Times, t.Start)
		d.TimeLabels = append(d.TimeLabels, t.Text)
		hasRange = hasRange || t.HasEnd
	}
	if prefs != nil {
		if len(prefs.AvoidDays) > 0 {
			d.Constraints.AvoidDays = model.SortWeekdays(append(append([]model.Weekday{}, d.Constraints.AvoidDays...), prefs.AvoidDays...))
		}
		if !s.Durations.Explicit && !hasRange && prefs.DefaultEventDuration > 0 {
			d.Duration = prefs.DefaultEventDuration
		}
	}
	return d
}

// clampDuration applies the constraint bounds to minutes.
func clampDuration(minutes int, c model.Constraints) int {
	if minutes <= 0 {
		minutes = constraint.DefaultDurationMinutes
	}
	if c.MaxDuration > 0 && minutes > c.MaxDuration {
		minutes = c.MaxDuration
	}
	if c.MinDuration > 0 && minutes < c.MinDuration {
		minutes = c.MinDuration
	}
	return minutes
}
