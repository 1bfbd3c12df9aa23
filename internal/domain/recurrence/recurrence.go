// Package recurrence converts between plan recurrence rules and RFC 5545
// RRULE strings, and expands rules into concrete occurrences.
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/okian/studyplan/internal/domain/model"
)

// DefaultMaxOccurrences caps one expansion.
const DefaultMaxOccurrences = 500

const rrulePrefix = "RRULE:"

var toRRuleDay = map[model.Weekday]rrule.Weekday{
	model.Monday:    rrule.MO,
	model.Tuesday:   rrule.TU,
	model.Wednesday: rrule.WE,
	model.Thursday:  rrule.TH,
	model.Friday:    rrule.FR,
	model.Saturday:  rrule.SA,
	model.Sunday:    rrule.SU,
}

var toFrequency = map[model.Frequency]rrule.Frequency{
	model.Daily:   rrule.DAILY,
	model.Weekly:  rrule.WEEKLY,
	model.Monthly: rrule.MONTHLY,
}

// Build validates rule against rrule and fills in its RRule rendering.
// dtstart anchors the series.
func Build(rule model.RecurrenceRule, dtstart time.Time) (model.RecurrenceRule, error) {
	opt, err := options(rule, dtstart)
	if err != nil {
		return rule, err
	}
	if _, err := rrule.NewRRule(opt); err != nil {
		return rule, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	if rule.Interval < 1 {
		rule.Interval = 1
	}
	rule.DaysOfWeek = model.SortWeekdays(rule.DaysOfWeek)
	rule.RRule = opt.RRuleString()
	return rule, nil
}

// Weekly returns a weekly rule on days, one week apart.
func Weekly(days []model.Weekday, dtstart time.Time) (model.RecurrenceRule, error) {
	return Build(model.RecurrenceRule{
		Frequency:  model.Weekly,
		Interval:   1,
		DaysOfWeek: days,
	}, dtstart)
}

// Line renders rule as a calendar RRULE line, e.g. "RRULE:FREQ=WEEKLY;BYDAY=TU,TH".
func Line(rule model.RecurrenceRule) string {
	if rule.RRule == "" {
		return ""
	}
	return rrulePrefix + rule.RRule
}

// Parse reads an RRULE string, with or without the "RRULE:" prefix.
func Parse(s string) (model.RecurrenceRule, error) {
	raw := strings.TrimSpace(s)
	if len(raw) >= len(rrulePrefix) && strings.EqualFold(raw[:len(rrulePrefix)], rrulePrefix) {
		raw = raw[len(rrulePrefix):]
	}
	opt, err := rrule.StrToROption(raw)
	if err != nil {
		return model.RecurrenceRule{}, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	rule := model.RecurrenceRule{
		Interval: opt.Interval,
		Count:    opt.Count,
		RRule:    raw,
	}
	for f, rf := range toFrequency {
		if rf == opt.Freq {
			rule.Frequency = f
		}
	}
	if rule.Frequency == "" {
		return model.RecurrenceRule{}, fmt.Errorf("%w: unsupported frequency %v", ErrInvalidRule, opt.Freq)
	}
	if rule.Interval < 1 {
		rule.Interval = 1
	}
	for _, d := range opt.Byweekday {
		for wd, rd := range toRRuleDay {
			if rd.Day() == d.Day() {
				rule.DaysOfWeek = append(rule.DaysOfWeek, wd)
			}
		}
	}
	rule.DaysOfWeek = model.SortWeekdays(rule.DaysOfWeek)
	if !opt.Until.IsZero() {
		until := opt.Until
		rule.EndDate = &until
	}
	return rule, nil
}

// Between returns the starts of rule's occurrences within [from, to],
// anchored at dtstart and capped at max (DefaultMaxOccurrences when <= 0).
// The boolean reports whether the cap truncated the result.
func Between(rule model.RecurrenceRule, dtstart, from, to time.Time, max int) ([]time.Time, bool, error) {
	if to.Before(from) {
		return nil, false, ErrInvalidRange
	}
	if max <= 0 {
		max = DefaultMaxOccurrences
	}
	opt, err := options(rule, dtstart)
	if err != nil {
		return nil, false, err
	}
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	loc := dtstart.Location()
	out := r.Between(from.In(loc), to.In(loc), true)
	if len(out) > max {
		return out[:max], true, nil
	}
	return out, false, nil
}

// Occurrences expands a recurring span into concrete time ranges that start
// within [from, to], keeping the duration of the first occurrence.
func Occurrences(rule model.RecurrenceRule, first model.TimeRange, from, to time.Time) ([]model.TimeRange, error) {
	starts, _, err := Between(rule, first.Start, from, to, 0)
	if err != nil {
		return nil, err
	}
	d := first.Duration()
	out := make([]model.TimeRange, 0, len(starts))
	for _, s := range starts {
		out = append(out, model.TimeRange{Start: s, End: s.Add(d)})
	}
	return out, nil
}

func options(rule model.RecurrenceRule, dtstart time.Time) (rrule.ROption, error) {
	freq, ok := toFrequency[rule.Frequency]
	if !ok {
		return rrule.ROption{}, fmt.Errorf("%w: unsupported frequency %q", ErrInvalidRule, rule.Frequency)
	}
	if rule.Count < 0 {
		return rrule.ROption{}, fmt.Errorf("%w: negative count", ErrInvalidRule)
	}
	opt := rrule.ROption{
		Freq:     freq,
		Interval: rule.Interval,
		Count:    rule.Count,
		Dtstart:  dtstart,
	}
	if opt.Interval < 1 {
		opt.Interval = 1
	}
	for _, d := range model.SortWeekdays(rule.DaysOfWeek) {
		opt.Byweekday = append(opt.Byweekday, toRRuleDay[d])
	}
	if rule.EndDate != nil {
		if rule.EndDate.Before(dtstart) {
			return rrule.ROption{}, fmt.Errorf("%w: end date before start", ErrInvalidRule)
		}
		opt.Until = *rule.EndDate
	}
	return opt, nil
}
