package constraint

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultDurationMinutes is used when a request names no duration.
const DefaultDurationMinutes = 120

var durationRe = regexp.MustCompile(`(?i)(?:\b(at\s+least|min(?:imum)?(?:\s+of)?|at\s+most|up\s+to|no\s+more\s+than|max(?:imum)?(?:\s+of)?)\s+)?` +
	`\b(\d+(?:\.\d+)?)\s*(hours?|hrs?|minutes?|mins?)\b`)

// Durations holds what the duration clauses of a request say, in minutes.
type Durations struct {
	Minutes  int
	Explicit bool
	Min      int
	Max      int
}

// Duration returns the first duration clause in text, or the default.
func Duration(text string) (minutes int, explicit bool) {
	d := ParseDurations(text)
	return d.Minutes, d.Explicit
}

// ParseDurations reads every duration clause. The first clause of any kind
// sets Minutes; "at least" clauses set Min; "at most"/"up to" clauses and an
// unqualified clause set Max.
func ParseDurations(text string) Durations {
	d := Durations{Minutes: DefaultDurationMinutes}
	for _, m := range durationRe.FindAllStringSubmatch(text, -1) {
		mins := toMinutes(m[2], m[3])
		if mins <= 0 {
			continue
		}
		if !d.Explicit {
			d.Minutes = mins
			d.Explicit = true
		}
		q := strings.ToLower(strings.Join(strings.Fields(m[1]), " "))
		switch {
		case q == "at least" || strings.HasPrefix(q, "min"):
			if d.Min == 0 {
				d.Min = mins
			}
		case q != "":
			if d.Max == 0 {
				d.Max = mins
			}
		default:
			if d.Max == 0 {
				d.Max = mins
			}
		}
	}
	return d
}

func toMinutes(value, unit string) int {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	if strings.HasPrefix(strings.ToLower(unit), "h") {
		v *= 60
	}
	return int(math.Round(v))
}

// MinDuration returns the minutes of the first "at least" clause, or 0.
func MinDuration(text string) int {
	return ParseDurations(text).Min
}
