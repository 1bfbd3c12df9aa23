// Package conflict checks a candidate plan against existing calendar events
// and proposes shifted alternatives.
//
// The resolver performs no I/O: callers fetch the existing events first.
// Recurring events are expanded around the plan before checking.
package conflict

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/recurrence"
)

// Defaults.
const (
	DefaultAdjacencyWindow = 30 * time.Minute
	DefaultMaxAlternatives = 3
	// minorThreshold is the top-alternative score above which it is suggested
	// when no conflict is HIGH.
	minorThreshold = 0.7
	// expandMargin widens the expansion window so long occurrences that
	// started before the plan are still seen.
	expandMargin = 24 * time.Hour
)

// Shift moves a plan's start. Hours apply first, then whole days.
type Shift struct {
	Hours       int
	Days        int
	Description string
}

func (s Shift) apply(t time.Time) time.Time {
	return t.Add(time.Duration(s.Hours) * time.Hour).AddDate(0, 0, s.Days)
}

// DefaultShifts is the order alternatives are tried in.
func DefaultShifts() []Shift {
	return []Shift{
		{Hours: 1, Description: "1 hour later"},
		{Hours: -1, Description: "1 hour earlier"},
		{Hours: 2, Description: "2 hours later"},
		{Hours: -2, Description: "2 hours earlier"},
		{Days: 1, Description: "next day"},
	}
}

// Resolver detects conflicts and ranks alternatives.
type Resolver struct {
	window          time.Duration
	shifts          []Shift
	maxAlternatives int
	weights         Weights
}

// New creates a Resolver with the stock rules.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		window:          DefaultAdjacencyWindow,
		shifts:          DefaultShifts(),
		maxAlternatives: DefaultMaxAlternatives,
		weights:         DefaultWeights(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Check runs detection on plan, then generates alternatives and a
// recommendation.
func (r *Resolver) Check(plan model.EventPlan, existing []model.CalendarEvent) model.ConflictResolution {
	occ := r.expand(plan, existing)
	conflicts := r.detect(plan, occ)
	alternatives := r.alternatives(plan, occ)
	return model.ConflictResolution{
		Conflicts:      conflicts,
		Alternatives:   alternatives,
		Recommendation: Recommend(conflicts, alternatives),
	}
}

// Detect returns plan's conflicts with existing, including constraint
// violations of the plan itself.
func (r *Resolver) Detect(plan model.EventPlan, existing []model.CalendarEvent) []model.CalendarConflict {
	return r.detect(plan, r.expand(plan, existing))
}

// occurrence is one concrete instance of an existing event.
type occurrence struct {
	id    string
	title string
	span  model.TimeRange
}

// expand turns existing events into concrete spans around plan. Events whose
// recurrence cannot be read are checked as single events.
func (r *Resolver) expand(plan model.EventPlan, existing []model.CalendarEvent) []occurrence {
	var lo, hi time.Duration
	for _, s := range r.shifts {
		d := s.apply(plan.StartDateTime).Sub(plan.StartDateTime)
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	from := plan.StartDateTime.Add(lo - r.window - expandMargin)
	to := plan.EndDateTime.Add(hi + r.window)

	out := make([]occurrence, 0, len(existing))
	for _, ev := range existing {
		span := ev.Span()
		if !span.End.After(span.Start) {
			continue
		}
		rule, ok := ruleOf(ev)
		if !ok {
			out = append(out, occurrence{id: ev.ID, title: ev.Title, span: span})
			continue
		}
		spans, err := recurrence.Occurrences(rule, span, from, to)
		if err != nil {
			out = append(out, occurrence{id: ev.ID, title: ev.Title, span: span})
			continue
		}
		for _, s := range spans {
			out = append(out, occurrence{id: ev.ID, title: ev.Title, span: s})
		}
	}
	return out
}

func ruleOf(ev model.CalendarEvent) (model.RecurrenceRule, bool) {
	for _, line := range ev.Recurrence {
		if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), "RRULE:") {
			continue
		}
		rule, err := recurrence.Parse(line)
		if err != nil {
			return model.RecurrenceRule{}, false
		}
		return rule, true
	}
	return model.RecurrenceRule{}, false
}

func (r *Resolver) detect(plan model.EventPlan, occ []occurrence) []model.CalendarConflict {
	ps := plan.Span()
	conflicts := make([]model.CalendarConflict, 0)
	for _, o := range occ {
		kind, sev, ok := r.classify(ps, o.span)
		if !ok {
			continue
		}
		conflicts = append(conflicts, model.CalendarConflict{
			EventID:      o.id,
			Title:        o.title,
			Start:        o.span.Start,
			End:          o.span.End,
			ConflictType: kind,
			Severity:     sev,
		})
	}
	return append(conflicts, violations(plan)...)
}

// classify compares the plan span p with an existing span e.
func (r *Resolver) classify(p, e model.TimeRange) (model.ConflictType, model.Severity, bool) {
	if p.Overlaps(e) {
		switch {
		case p.Start.Equal(e.Start) && p.End.Equal(e.End):
			return model.ConflictOverlap, model.SeverityHigh, true
		case r.near(p.Start, e.End) || r.near(p.End, e.Start):
			return model.ConflictAdjacent, model.SeverityLow, true
		default:
			return model.ConflictOverlap, model.SeverityMedium, true
		}
	}
	gap := e.Start.Sub(p.End)
	if !p.Start.Before(e.End) {
		gap = p.Start.Sub(e.End)
	}
	if gap <= r.window {
		return model.ConflictAdjacent, model.SeverityLow, true
	}
	return "", "", false
}

func (r *Resolver) near(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= r.window
}

// violations reports the plan breaking its own constraints.
func violations(plan model.EventPlan) []model.CalendarConflict {
	var out []model.CalendarConflict
	c := plan.Constraints
	if c.Avoids(plan.StartDateTime) {
		day := model.WeekdayOf(plan.StartDateTime.Weekday())
		out = append(out, violation(plan, "Scheduled on avoided day "+day.Title()))
	}
	if mins := int(plan.Span().Duration() / time.Minute); c.MaxDuration > 0 && mins > c.MaxDuration {
		out = append(out, violation(plan, fmt.Sprintf("Longer than the %d minute maximum", c.MaxDuration)))
	}
	return out
}

func violation(plan model.EventPlan, title string) model.CalendarConflict {
	return model.CalendarConflict{
		EventID:      plan.ID,
		Title:        title,
		Start:        plan.StartDateTime,
		End:          plan.EndDateTime,
		ConflictType: model.ConflictConstraintViolation,
		Severity:     model.SeverityMedium,
	}
}

// alternatives tries each shift in order, keeps those scoring above the
// minimum until the cap is reached, then sorts by score and ranks 1..n.
func (r *Resolver) alternatives(plan model.EventPlan, occ []occurrence) []model.EventAlternative {
	out := make([]model.EventAlternative, 0, r.maxAlternatives)
	duration := plan.Span().Duration()
	for _, s := range r.shifts {
		if len(out) >= r.maxAlternatives {
			break
		}
		alt := plan
		alt.StartDateTime = s.apply(plan.StartDateTime)
		alt.EndDateTime = alt.StartDateTime.Add(duration)

		conflicts := r.detect(alt, occ)
		score := r.weights.Score(alt.StartDateTime, plan.StartDateTime, conflicts)
		if score <= r.weights.MinScore {
			continue
		}
		tradeoffs := []string{}
		if n := len(conflicts); n > 0 {
			tradeoffs = append(tradeoffs, fmt.Sprintf("Still has %d conflict(s)", n))
		}
		out = append(out, model.EventAlternative{
			Plan:      alt,
			Score:     score,
			Reasoning: fmt.Sprintf("Moved %s to avoid conflicts", s.Description),
			Tradeoffs: tradeoffs,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Recommend picks the recommendation text for a check result.
func Recommend(conflicts []model.CalendarConflict, alternatives []model.EventAlternative) string {
	if len(conflicts) == 0 {
		return "No conflicts detected. The proposed time slot is available."
	}
	for _, c := range conflicts {
		if c.Severity != model.SeverityHigh {
			continue
		}
		if len(alternatives) > 0 {
			return fmt.Sprintf("Direct conflict detected with %s. Recommend using alternative option %d.",
				c.Title, alternatives[0].Rank)
		}
		return "Direct conflict detected. Please choose a different time."
	}
	if len(alternatives) > 0 && alternatives[0].Score > minorThreshold {
		return fmt.Sprintf("Minor conflicts detected. Alternative option %d provides better scheduling.",
			alternatives[0].Rank)
	}
	return "Some scheduling conflicts detected. Review the options and choose your preference."
}

// Summary counts conflicts by type and severity, keyed "TYPE/SEVERITY".
func Summary(conflicts []model.CalendarConflict) map[string]int {
	out := make(map[string]int, len(conflicts))
	for _, c := range conflicts {
		out[string(c.ConflictType)+"/"+string(c.Severity)]++
	}
	return out
}
