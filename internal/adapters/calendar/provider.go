// Package calendar connects plans to external calendars.
//
// Three providers implement the same port: an in-memory calendar, Google
// Calendar, and a read-only ICS subscription feed refreshed on a schedule.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/recurrence"
)

// Provider names.
const (
	ProviderMemory = "memory"
	ProviderGoogle = "google"
	ProviderICS    = "ics"
)

// untitled is used for events that come back without a summary.
const untitled = "Untitled Event"

// Provider is a calendar the service can read from and, for most
// implementations, write to. List returns single occurrences: recurring
// series are expanded into instances inside [from, to].
type Provider interface {
	Name() string
	List(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error)
	Create(ctx context.Context, plan model.EventPlan) (model.CalendarEvent, error)
	Update(ctx context.Context, id string, plan model.EventPlan) (model.CalendarEvent, error)
	Delete(ctx context.Context, id string) error
}

// DayWindow returns midnight to the last nanosecond of t's day.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// FromPlan builds the event a plan becomes when written to a calendar.
func FromPlan(id string, plan model.EventPlan, source model.EventSource) (model.CalendarEvent, error) {
	if strings.TrimSpace(plan.Title) == "" {
		return model.CalendarEvent{}, fmt.Errorf("%w: missing title", ErrInvalidPlan)
	}
	if !plan.EndDateTime.After(plan.StartDateTime) {
		return model.CalendarEvent{}, fmt.Errorf("%w: end must be after start", ErrInvalidPlan)
	}
	ev := model.CalendarEvent{
		ID:          id,
		Title:       plan.Title,
		Description: plan.Description,
		Start:       model.EventTime{DateTime: plan.StartDateTime, TimeZone: plan.StartDateTime.Location().String()},
		End:         model.EventTime{DateTime: plan.EndDateTime, TimeZone: plan.EndDateTime.Location().String()},
		Location:    plan.Location,
		Attendees:   append([]string(nil), plan.Attendees...),
		Source:      source,
	}
	if plan.Recurrence != nil {
		rule := *plan.Recurrence
		if rule.RRule == "" {
			built, err := recurrence.Build(rule, plan.StartDateTime)
			if err != nil {
				return model.CalendarEvent{}, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
			}
			rule = built
		}
		ev.Recurrence = []string{recurrence.Line(rule)}
	}
	return ev, nil
}

// expandInto appends the instances of ev that start inside [from, to].
// Non-recurring events are kept when they overlap the window; a recurrence
// that cannot be read leaves the event as a single instance.
func expandInto(out []model.CalendarEvent, ev model.CalendarEvent, from, to time.Time) []model.CalendarEvent {
	window := model.TimeRange{Start: from, End: to}
	rule, ok := rruleOf(ev.Recurrence)
	if !ok {
		if ev.Span().Overlaps(window) {
			out = append(out, ev)
		}
		return out
	}
	spans, err := recurrence.Occurrences(rule, ev.Span(), from, to)
	if err != nil {
		if ev.Span().Overlaps(window) {
			out = append(out, ev)
		}
		return out
	}
	for _, s := range spans {
		inst := ev
		inst.Start.DateTime = s.Start
		inst.End.DateTime = s.End
		out = append(out, inst)
	}
	return out
}

func rruleOf(lines []string) (model.RecurrenceRule, bool) {
	for _, l := range lines {
		if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(l)), "RRULE:") {
			continue
		}
		rule, err := recurrence.Parse(l)
		return rule, err == nil
	}
	return model.RecurrenceRule{}, false
}

func checkRange(from, to time.Time) error {
	if to.Before(from) {
		return ErrInvalidRange
	}
	return nil
}
