// Package planner turns an extracted request into concrete, future-dated
// event plans with a confidence score and an explanation.
package planner

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/studyplan/internal/domain/constraint"
	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/recurrence"
	"github.com/okian/studyplan/internal/domain/temporal"
	"github.com/okian/studyplan/pkg/logger"
)

const (
	baseConfidence     = 0.7
	confidenceStep     = 0.1
	maxConfidence      = 0.95
	enhancedConfidence = 0.85
	descriptionMinLen  = 50
	rollForwardDays    = 7
)

// defaultClock is the start used when a request names days but no time.
var defaultClock = temporal.Clock{Hour: 19}

var (
	pmRe      = regexp.MustCompile(`(?i)\d\s*p\.?m\b|\bpm\b`)
	tuThRe    = regexp.MustCompile(`(?i)\b(?:tu|tue|tues|tuesdays?|th|thu|thur|thurs|thursdays?)\b`)
	hourDigit = "789"
)

// Planner generates plans. It holds no mutable state and is safe for
// concurrent use.
type Planner struct {
	parser *temporal.Parser
	newID  func() string
}

// New constructs a Planner.
func New(opts ...Option) *Planner {
	p := &Planner{
		parser: temporal.New(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreatePlans runs the rule-based extractor over the request and returns at
// least one plan.
func (p *Planner) CreatePlans(ctx context.Context, req model.SchedulingRequest) []model.EventPlan {
	var prefs *model.UserPreferences
	if req.Context != nil {
		prefs = req.Context.UserPreferences
	}
	d := DraftFromSignals(constraint.Extract(req.NaturalLanguageInput), prefs)
	return p.FromDraft(ctx, d)
}

// FromDraft generates plans from an already extracted request.
func (p *Planner) FromDraft(ctx context.Context, d Draft) []model.EventPlan {
	if strings.TrimSpace(d.Title) == "" {
		d.Title = constraint.UntitledEvent
	}
	d.Duration = clampDuration(d.Duration, d.Constraints)

	slots, note := p.slots(d)
	plans := make([]model.EventPlan, 0, len(slots))
	for _, slot := range slots {
		plans = append(plans, p.plan(d, slot, note))
	}

	logger.Get().Debug(ctx, "plans generated",
		logger.String("source", string(d.Source)),
		logger.String("title", d.Title),
		logger.Int("count", len(plans)),
		logger.Int("duration_minutes", d.Duration),
	)
	return plans
}

// slots builds the candidate ranges: time x day, time-only on the next
// day, day-only at 19:00, else the next day at 19:00. Avoided days are
// dropped; if nothing survives, slots roll forward to the next allowed day.
func (p *Planner) slots(d Draft) ([]model.TimeRange, string) {
	now := p.parser.Now()
	tomorrow := now.AddDate(0, 0, 1)
	length := time.Duration(d.Duration) * time.Minute

	var starts []time.Time
	clocks := d.Times
	switch {
	case len(clocks) > 0 && len(d.Days) > 0:
		for _, c := range clocks {
			for _, day := range d.Days {
				starts = append(starts, p.onDay(now, day, c))
			}
		}
	case len(clocks) > 0:
		for _, c := range clocks {
			starts = append(starts, p.parser.At(tomorrow, c))
		}
	case len(d.Days) > 0:
		for _, day := range d.Days {
			starts = append(starts, p.onDay(now, day, defaultClock))
		}
	default:
		starts = append(starts, p.parser.At(tomorrow, defaultClock))
	}

	kept := filterAvoided(starts, d.Constraints)
	note := ""
	if len(kept) == 0 {
		kept, note = p.rollForward(starts, d.Constraints, tomorrow)
	}

	out := make([]model.TimeRange, 0, len(kept))
	seen := make(map[int64]bool, len(kept))
	for _, s := range kept {
		if seen[s.Unix()] {
			continue
		}
		seen[s.Unix()] = true
		out = append(out, model.TimeRange{Start: s, End: s.Add(length)})
	}
	return out, note
}

func (p *Planner) onDay(now time.Time, day model.Weekday, c temporal.Clock) time.Time {
	wd, ok := day.Std()
	if !ok {
		return p.parser.At(now.AddDate(0, 0, 1), c)
	}
	return p.parser.At(temporal.NextWeekday(now, wd), c)
}

func filterAvoided(starts []time.Time, c model.Constraints) []time.Time {
	out := make([]time.Time, 0, len(starts))
	for _, s := range starts {
		if !c.Avoids(s) {
			out = append(out, s)
		}
	}
	return out
}

// rollForward moves each start day by day to the first allowed weekday.
// When every weekday is avoided the default next-day slot is kept.
func (p *Planner) rollForward(starts []time.Time, c model.Constraints, tomorrow time.Time) ([]time.Time, string) {
	var out []time.Time
	for _, s := range starts {
		for i := 1; i <= rollForwardDays; i++ {
			next := s.AddDate(0, 0, i)
			if !c.Avoids(next) {
				out = append(out, next)
				break
			}
		}
	}
	if len(out) == 0 {
		return []time.Time{p.parser.At(tomorrow, defaultClock)}, "Every day is avoided, kept the default slot"
	}
	return out, "Moved to the next day that is not avoided"
}

func (p *Planner) plan(d Draft, slot model.TimeRange, note string) model.EventPlan {
	plan := model.EventPlan{
		ID:            p.newID(),
		Title:         d.Title,
		StartDateTime: slot.Start,
		EndDateTime:   slot.End,
		Location:      d.Location,
		Attendees:     d.Attendees,
		Constraints:   d.Constraints,
		Recurrence:    recurrenceFor(d, slot.Start),
	}
	switch d.Source {
	case SourceEnhanced:
		plan.Description = fmt.Sprintf("Generated from: %q", d.Input)
		plan.Confidence = enhancedConfidence
		plan.Explanation = enhancedExplanation(d, slot, note)
	default:
		if len(d.Input) > descriptionMinLen {
			plan.Description = `Auto-generated from: "` + d.Input + `"`
		}
		plan.Confidence = Confidence(d.Input)
		plan.Explanation = explanation(d, slot, note)
	}
	return plan
}

func recurrenceFor(d Draft, start time.Time) *model.RecurrenceRule {
	if !d.Recurring || d.Frequency == "" {
		return nil
	}
	rule := model.RecurrenceRule{Frequency: d.Frequency, Interval: 1}
	if d.Frequency == model.Weekly {
		for _, day := range d.Days {
			if !model.ContainsWeekday(d.Constraints.AvoidDays, day) {
				rule.DaysOfWeek = append(rule.DaysOfWeek, day)
			}
		}
	}
	built, err := recurrence.Build(rule, start)
	if err != nil {
		return nil
	}
	return &built
}

// Confidence scores a request: 0.7 base, +0.1 for an hour digit 7, 8 or 9,
// +0.1 for a pm marker, +0.1 for a Tuesday/Thursday token, capped at 0.95.
func Confidence(input string) float64 {
	c := baseConfidence
	if strings.ContainsAny(input, hourDigit) {
		c += confidenceStep
	}
	if pmRe.MatchString(input) {
		c += confidenceStep
	}
	if tuThRe.MatchString(input) {
		c += confidenceStep
	}
	return math.Round(math.Min(c, maxConfidence)*100) / 100
}

func explanation(d Draft, slot model.TimeRange, note string) string {
	parts := []string{
		`Scheduled based on your request: "` + d.Input + `"`,
		"Time slot: " + slot.Start.Format("15:04") + " - " + slot.End.Format("15:04"),
	}
	if len(d.Constraints.AvoidDays) > 0 {
		parts = append(parts, "Avoided: "+joinDays(d.Constraints.AvoidDays))
	}
	if note != "" {
		parts = append(parts, note)
	}
	return strings.Join(parts, ". ")
}

func enhancedExplanation(d Draft, slot model.TimeRange, note string) string {
	parts := []string{fmt.Sprintf("Scheduled %q based on your request", d.Title)}
	if len(d.Days) > 0 {
		parts = append(parts, "on "+joinDays(d.Days))
	}
	if len(d.TimeLabels) > 0 {
		parts = append(parts, "at your preferred time of "+d.TimeLabels[0])
	}
	parts = append(parts, "("+slot.Start.Format("15:04")+" - "+slot.End.Format("15:04")+")")
	if len(d.Constraints.AvoidDays) > 0 {
		parts = append(parts, "while avoiding "+joinDays(d.Constraints.AvoidDays))
	}
	out := strings.Join(parts, " ") + "."
	if note != "" {
		out += " " + note + "."
	}
	return out
}

func joinDays(days []model.Weekday) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}
