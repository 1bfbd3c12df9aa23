// Package constraint pulls scheduling signals out of a free-text request:
// target days, avoided days, durations, repeat frequency, time ranges, and
// the descriptive fields of the event.
package constraint

import (
	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/temporal"
)

// Signals is everything the rule-based extractor found in one request.
type Signals struct {
	Input       string
	Title       string
	Location    string
	Attendees   []string
	Days        []model.Weekday
	Compound    bool
	Times       []temporal.Span
	Durations   Durations
	Frequency   model.Frequency
	Recurring   bool
	Constraints model.Constraints
}

// DurationMinutes returns the event length the plan should use: an explicit
// clause, else the span of the first time range, else the default.
func (s Signals) DurationMinutes() int {
	if s.Durations.Explicit {
		return s.Durations.Minutes
	}
	for _, t := range s.Times {
		if t.HasEnd {
			return t.DurationMinutes()
		}
	}
	return DefaultDurationMinutes
}

// Extract runs every rule over text.
func Extract(text string) Signals {
	days, compound := Days(text)
	freq := Frequency(text)
	s := Signals{
		Input:     text,
		Title:     Title(text),
		Location:  Location(text),
		Attendees: Attendees(text),
		Days:      days,
		Compound:  compound,
		Times:     temporal.ScanTimes(text),
		Durations: ParseDurations(text),
		Frequency: freq,
	}
	s.Recurring = freq != "" || impliesWeekly(text) || compound && len(days) > 1
	if s.Recurring && s.Frequency == "" {
		s.Frequency = model.Weekly
	}
	s.Constraints = Constraints(text, s.Times, s.Durations)
	return s
}

// Constraints builds the constraint set carried on every plan.
func Constraints(text string, times []temporal.Span, d Durations) model.Constraints {
	c := model.Constraints{
		AvoidDays:   AvoidDays(text),
		MaxDuration: d.Max,
		MinDuration: d.Min,
	}
	for _, t := range times {
		if !t.HasEnd {
			continue
		}
		c.PreferredTimes = append(c.PreferredTimes, model.ClockRange{
			Start: t.Start.String(),
			End:   t.End.String(),
		})
	}
	return c
}
