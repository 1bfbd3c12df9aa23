package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// rolloverWindow is how far in the past a year-less date may fall before it
// is read as next year's occurrence.
const rolloverWindow = 180 * 24 * time.Hour

// Date is a calendar day without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// String renders YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// MonthPattern matches English month names and their common abbreviations.
// Full names come first so the longest spelling is preferred.
const MonthPattern = `january|february|march|april|may|june|july|august|september|october|november|december|` +
	`jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// rawDate holds what a matcher pulled out before validation and year inference.
type rawDate struct {
	month   int
	day     int
	year    int
	hasYear bool
}

// dateMatcher is one entry of the date cascade.
type dateMatcher struct {
	name    string
	re      *regexp.Regexp
	extract func(m []string) (rawDate, bool)
}

// dateMatchers are tried in order: month-name, day-before-month, ISO
// year-first, numeric slash/dash, numeric dot.
var dateMatchers = []dateMatcher{
	{
		name: "month_name",
		re: regexp.MustCompile(`(?i)\b(` + MonthPattern + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b` +
			`(?:,\s*(\d{4}|\d{2})\b|\s+(\d{4})\b)?`),
		extract: func(m []string) (rawDate, bool) {
			return named(m[1], m[2], firstNonEmpty(m[3], m[4]))
		},
	},
	{
		name: "day_month",
		re: regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + MonthPattern + `)\b\.?` +
			`(?:,?\s+(\d{4})\b)?`),
		extract: func(m []string) (rawDate, bool) {
			return named(m[2], m[1], m[3])
		},
	},
	{
		name: "iso",
		re:   regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`),
		extract: func(m []string) (rawDate, bool) {
			month, err := strconv.Atoi(m[2])
			if err != nil {
				return rawDate{}, false
			}
			day, err := strconv.Atoi(m[3])
			if err != nil {
				return rawDate{}, false
			}
			raw := rawDate{month: month, day: day}
			raw.year, raw.hasYear = year(m[1])
			return raw, true
		},
	},
	{
		name: "numeric",
		re:   regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{4}|\d{2}))?\b`),
		extract: func(m []string) (rawDate, bool) {
			return numeric(m[1], m[2], m[3])
		},
	},
	{
		name: "numeric_dot",
		re:   regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})(?:\.(\d{4}|\d{2}))?\b`),
		extract: func(m []string) (rawDate, bool) {
			return numeric(m[1], m[2], m[3])
		},
	},
}

// ParseDate resolves the first recognizable date in text.
//
// A year in the text wins (two-digit years map to 20xx). Otherwise
// defaultYear is used when non-zero, else the current year; a result more
// than 180 days in the past rolls forward one year. Dates that do not exist
// on the calendar are rejected.
func (p *Parser) ParseDate(text string, defaultYear int) (Date, bool) {
	for _, dm := range dateMatchers {
		m := dm.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw, ok := dm.extract(m)
		if !ok {
			return Date{}, false
		}
		return p.resolve(raw, defaultYear)
	}
	return Date{}, false
}

// ParseDateLoose is the string form of ParseDate: "YYYY-MM-DD" or false.
func (p *Parser) ParseDateLoose(text string, defaultYear int) (string, bool) {
	d, ok := p.ParseDate(text, defaultYear)
	if !ok {
		return "", false
	}
	return d.String(), true
}

// ParseDateLoose parses with the wall clock in the local zone.
func ParseDateLoose(text string, defaultYear int) (string, bool) {
	return New().ParseDateLoose(text, defaultYear)
}

func (p *Parser) resolve(raw rawDate, defaultYear int) (Date, bool) {
	if raw.month < 1 || raw.month > 12 || raw.day < 1 || raw.day > 31 {
		return Date{}, false
	}
	month := time.Month(raw.month)
	if raw.hasYear {
		d := Date{Year: raw.year, Month: month, Day: raw.day}
		return d, valid(d)
	}

	year := defaultYear
	if year <= 0 {
		year = p.Now().Year()
	}
	d := Date{Year: year, Month: month, Day: raw.day}
	if !valid(d) {
		return Date{}, false
	}
	if next := (Date{Year: year + 1, Month: month, Day: raw.day}); valid(next) && p.Now().Sub(d.In(p.loc)) > rolloverWindow {
		return next, true
	}
	return d, true
}

// valid reports whether d names a real calendar day.
func valid(d Date) bool {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return t.Year() == d.Year && t.Month() == d.Month && t.Day() == d.Day
}

// LookupMonth maps a month name or abbreviation to its time.Month.
func LookupMonth(name string) (time.Month, bool) {
	m, ok := months[strings.ToLower(strings.TrimSuffix(name, "."))]
	return m, ok
}

func named(monthName, dayStr, yearStr string) (rawDate, bool) {
	month, ok := LookupMonth(monthName)
	if !ok {
		return rawDate{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return rawDate{}, false
	}
	raw := rawDate{month: int(month), day: day}
	raw.year, raw.hasYear = year(yearStr)
	return raw, true
}

// numeric reads month-first unless the first number cannot be a month and
// the second can, in which case it is day-first.
func numeric(a, b, yearStr string) (rawDate, bool) {
	first, err := strconv.Atoi(a)
	if err != nil {
		return rawDate{}, false
	}
	second, err := strconv.Atoi(b)
	if err != nil {
		return rawDate{}, false
	}
	raw := rawDate{month: first, day: second}
	if first > 12 && second <= 12 {
		raw = rawDate{month: second, day: first}
	}
	raw.year, raw.hasYear = year(yearStr)
	return raw, true
}

func year(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if y < 100 {
		y += 2000
	}
	return y, true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
