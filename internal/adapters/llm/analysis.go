package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/studyplan/internal/domain/constraint"
	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/planner"
	"github.com/okian/studyplan/internal/domain/temporal"
)

// Intent is what the user wants done.
type Intent string

// Intents the model may report.
const (
	IntentSchedule Intent = "SCHEDULE_EVENT"
	IntentModify   Intent = "MODIFY_EVENT"
	IntentQuery    Intent = "QUERY_CALENDAR"
	IntentUnclear  Intent = "UNCLEAR"
)

const (
	frequencyOnce      = "ONCE"
	maxDurationMinutes = 24 * 60
	fallbackConfidence = 0.3
	fallbackTitle      = "Event"
)

// Temporal holds when the event should happen.
type Temporal struct {
	DurationMinutes int              `json:"durationMinutes,omitempty"`
	PreferredTimes  []temporal.Clock `json:"preferredTimes,omitempty"`
	TimeLabels      []string         `json:"timeLabels,omitempty"`
	Days            []model.Weekday  `json:"daysOfWeek,omitempty"`
}

// Constraints holds what the event should avoid.
type Constraints struct {
	AvoidDays  []model.Weekday `json:"avoidDays,omitempty"`
	AvoidTimes []string        `json:"avoidTimes,omitempty"`
}

// Recurrence holds how often the event repeats. An empty frequency means once.
type Recurrence struct {
	Frequency model.Frequency `json:"frequency,omitempty"`
}

// Analysis is a validated extraction.
type Analysis struct {
	Intent         Intent      `json:"intent"`
	Title          string      `json:"title,omitempty"`
	Location       string      `json:"location,omitempty"`
	Attendees      []string    `json:"attendees,omitempty"`
	Temporal       Temporal    `json:"temporal"`
	Constraints    Constraints `json:"constraints"`
	Recurrence     Recurrence  `json:"recurrence"`
	Confidence     float64     `json:"confidence"`
	Clarifications []string    `json:"clarificationNeeded,omitempty"`
	Suggestions    []string    `json:"suggestions,omitempty"`
	// Fallback is set when the analysis did not come from the model.
	Fallback bool `json:"fallback"`
}

// Usable reports whether the analysis should replace heuristic plans.
func (a Analysis) Usable(threshold float64) bool {
	return !a.Fallback && a.Intent == IntentSchedule && a.Confidence > threshold
}

// Draft converts the analysis into planner input.
func (a Analysis) Draft(input string) planner.Draft {
	d := planner.Draft{
		Input:       input,
		Title:       a.Title,
		Duration:    a.Temporal.DurationMinutes,
		Times:       a.Temporal.PreferredTimes,
		TimeLabels:  a.Temporal.TimeLabels,
		Days:        a.Temporal.Days,
		Frequency:   a.Recurrence.Frequency,
		Recurring:   a.Recurrence.Frequency != "",
		Constraints: model.Constraints{AvoidDays: a.Constraints.AvoidDays},
		Location:    a.Location,
		Attendees:   a.Attendees,
		Source:      planner.SourceEnhanced,
	}
	if d.Title == "" {
		d.Title = constraint.UntitledEvent
	}
	if d.Duration <= 0 {
		d.Duration = constraint.DefaultDurationMinutes
	}
	return d
}

// Fallback is the analysis used when the model cannot be reached.
func Fallback(input string) Analysis {
	lower := strings.ToLower(input)
	intent := IntentUnclear
	for _, kw := range []string{"schedule", "block", "add"} {
		if strings.Contains(lower, kw) {
			intent = IntentSchedule
			break
		}
	}
	return Analysis{
		Intent:     intent,
		Title:      fallbackTitle,
		Temporal:   Temporal{DurationMinutes: constraint.DefaultDurationMinutes},
		Confidence: fallbackConfidence,
		Clarifications: []string{
			"Could you specify the preferred time?",
			"Which days of the week work best?",
			"How long should this event be?",
		},
		Fallback: true,
	}
}

// payload is the raw tool-call argument object.
type payload struct {
	Intent              string   `json:"intent"`
	Title               string   `json:"title"`
	Duration            *float64 `json:"duration"`
	PreferredTimes      []string `json:"preferredTimes"`
	DaysOfWeek          []string `json:"daysOfWeek"`
	Frequency           string   `json:"frequency"`
	AvoidDays           []string `json:"avoidDays"`
	AvoidTimes          []string `json:"avoidTimes"`
	Location            string   `json:"location"`
	Attendees           []string `json:"attendees"`
	Confidence          *float64 `json:"confidence"`
	ClarificationNeeded []string `json:"clarificationNeeded"`
	Suggestions         []string `json:"suggestions"`
}

// Decode parses and validates tool-call arguments. Enum fields and numeric
// ranges are enforced; unparseable preferred times are skipped.
func Decode(args string) (Analysis, error) {
	var p payload
	if err := json.Unmarshal([]byte(args), &p); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	a := Analysis{
		Title:          strings.TrimSpace(p.Title),
		Location:       strings.TrimSpace(p.Location),
		Clarifications: nonEmpty(p.ClarificationNeeded),
		Suggestions:    nonEmpty(p.Suggestions),
		Constraints:    Constraints{AvoidTimes: nonEmpty(p.AvoidTimes)},
	}

	switch i := Intent(strings.ToUpper(strings.TrimSpace(p.Intent))); i {
	case IntentSchedule, IntentModify, IntentQuery, IntentUnclear:
		a.Intent = i
	default:
		return Analysis{}, fmt.Errorf("%w: intent %q", ErrInvalidResponse, p.Intent)
	}

	if p.Confidence == nil || *p.Confidence < 0 || *p.Confidence > 1 {
		return Analysis{}, fmt.Errorf("%w: confidence missing or outside [0,1]", ErrInvalidResponse)
	}
	a.Confidence = *p.Confidence

	if p.Duration != nil {
		mins := int(*p.Duration)
		if mins <= 0 || mins > maxDurationMinutes {
			return Analysis{}, fmt.Errorf("%w: duration %v", ErrInvalidResponse, *p.Duration)
		}
		a.Temporal.DurationMinutes = mins
	}

	var err error
	if a.Temporal.Days, err = weekdays(p.DaysOfWeek); err != nil {
		return Analysis{}, err
	}
	if a.Constraints.AvoidDays, err = weekdays(p.AvoidDays); err != nil {
		return Analysis{}, err
	}

	switch f := strings.ToUpper(strings.TrimSpace(p.Frequency)); f {
	case "", frequencyOnce:
	case string(model.Daily), string(model.Weekly), string(model.Monthly):
		a.Recurrence.Frequency = model.Frequency(f)
	default:
		return Analysis{}, fmt.Errorf("%w: frequency %q", ErrInvalidResponse, p.Frequency)
	}

	for _, raw := range p.PreferredTimes {
		c, ok := temporal.ParseTime(raw)
		if !ok {
			continue
		}
		a.Temporal.PreferredTimes = append(a.Temporal.PreferredTimes, c)
		a.Temporal.TimeLabels = append(a.Temporal.TimeLabels, strings.TrimSpace(raw))
	}

	for _, addr := range p.Attendees {
		if addr = strings.TrimSpace(addr); strings.Contains(addr, "@") {
			a.Attendees = append(a.Attendees, addr)
		}
	}
	return a, nil
}

func weekdays(names []string) ([]model.Weekday, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]model.Weekday, 0, len(names))
	for _, n := range names {
		d, ok := model.ParseWeekday(n)
		if !ok {
			return nil, fmt.Errorf("%w: day %q", ErrInvalidResponse, n)
		}
		out = append(out, d)
	}
	return model.SortWeekdays(out), nil
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
