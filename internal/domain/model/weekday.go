// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Weekday is a canonical upper-case day name, e.g. "MONDAY".
type Weekday string

// Canonical day names.
const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

// Week lists the days Monday first.
var Week = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var stdDays = map[Weekday]time.Weekday{
	Sunday:    time.Sunday,
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
}

// ParseWeekday accepts a full day name in any case.
func ParseWeekday(s string) (Weekday, bool) {
	d := Weekday(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := stdDays[d]
	return d, ok
}

// WeekdayOf converts a time.Weekday.
func WeekdayOf(d time.Weekday) Weekday {
	for k, v := range stdDays {
		if v == d {
			return k
		}
	}
	return ""
}

// Std returns the time.Weekday for d. Unknown names map to Sunday with ok=false.
func (d Weekday) Std() (time.Weekday, bool) {
	v, ok := stdDays[d]
	return v, ok
}

// Short returns the two-letter RFC 5545 abbreviation ("MO", "TU", ...).
func (d Weekday) Short() string {
	if len(d) < 2 {
		return ""
	}
	return string(d[:2])
}

// Title returns "Monday" style casing.
func (d Weekday) Title() string {
	if d == "" {
		return ""
	}
	s := strings.ToLower(string(d))
	return strings.ToUpper(s[:1]) + s[1:]
}

// SortWeekdays orders days Monday..Sunday and drops duplicates and unknown names.
func SortWeekdays(days []Weekday) []Weekday {
	seen := make(map[Weekday]bool, len(days))
	for _, d := range days {
		seen[d] = true
	}
	out := make([]Weekday, 0, len(seen))
	for _, d := range Week {
		if seen[d] {
			out = append(out, d)
		}
	}
	return out
}

// ContainsWeekday reports whether days includes d.
func ContainsWeekday(days []Weekday, d Weekday) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}
