// Package temporal parses free-text time-of-day and calendar-date expressions.
//
// Both paths are ordered matcher lists: matchers are tried in the order they
// are declared and the first one that yields a value wins. Reordering the
// lists changes behavior.
package temporal

import "time"

// Parser resolves dates relative to an injected clock and location.
type Parser struct {
	now func() time.Time
	loc *time.Location
}

// New constructs a Parser using time.Now and time.Local unless overridden.
func New(opts ...Option) *Parser {
	p := &Parser{
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Now returns the parser's current time in its location.
func (p *Parser) Now() time.Time {
	return p.now().In(p.loc)
}

// Location returns the parser's location.
func (p *Parser) Location() *time.Location {
	return p.loc
}

// At places clock c on the calendar day of day, in the parser's location.
func (p *Parser) At(day time.Time, c Clock) time.Time {
	d := day.In(p.loc)
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, 0, 0, p.loc)
}

// NextWeekday returns the next calendar day after from that falls on wd.
// When from already falls on wd the result is one week later, never today.
func NextWeekday(from time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days)
}
