package constraint

import (
	"regexp"
	"strings"

	"github.com/okian/studyplan/internal/domain/model"
)

// dayAlt matches a single day token: full names, plurals, common
// abbreviations, and the weekend/weekday group words.
const dayAlt = `(?:mondays?|mon|tuesdays?|tues|tue|wednesdays?|wed|thursdays?|thurs|thur|thu|` +
	`fridays?|fri|saturdays?|sat|sundays?|sun|weekends?|weekdays?)\b\.?`

var (
	weekdays = []model.Weekday{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday}
	weekend  = []model.Weekday{model.Saturday, model.Sunday}

	dayTokenRe = regexp.MustCompile(`(?i)\b` + dayAlt)
	avoidRe    = regexp.MustCompile(`(?i)\b(?:avoid(?:ing)?|except|skip(?:ping)?|not\s+on)\s+` +
		`(` + dayAlt + `(?:\s*(?:,|&|/|\band\b|\bor\b)\s*` + dayAlt + `)*)`)
	everyDayRe = regexp.MustCompile(`(?i)\bevery\s+` + dayAlt)
	pluralRe   = regexp.MustCompile(`(?i)\b(?:mondays|tuesdays|wednesdays|thursdays|fridays|saturdays|sundays)\b`)
)

// lexEntry maps a word-bounded pattern to the days it names.
type lexEntry struct {
	re       *regexp.Regexp
	days     []model.Weekday
	compound bool
}

// lexicon is scanned in full; every entry that matches contributes its days.
var lexicon = []lexEntry{
	{re: regexp.MustCompile(`(?i)\b(?:tu|tue|tues|t)\s*/\s*(?:th|thu|thur|thurs|r)\b|\btth\b`), days: []model.Weekday{model.Tuesday, model.Thursday}, compound: true},
	{re: regexp.MustCompile(`(?i)\bm\s*/\s*w\s*/\s*f\b|\bmwf\b`), days: []model.Weekday{model.Monday, model.Wednesday, model.Friday}, compound: true},
	{re: regexp.MustCompile(`(?i)\b(?:mon|monday|m)\s*/\s*(?:wed|wednesday|w)\b|\bmw\b`), days: []model.Weekday{model.Monday, model.Wednesday}, compound: true},
	{re: regexp.MustCompile(`(?i)\bweekdays\b`), days: weekdays, compound: true},
	{re: regexp.MustCompile(`(?i)\bweekends?\b`), days: weekend, compound: true},
	{re: regexp.MustCompile(`(?i)\b(?:mondays?|mon)\b`), days: []model.Weekday{model.Monday}},
	{re: regexp.MustCompile(`(?i)\b(?:tuesdays?|tues|tue)\b`), days: []model.Weekday{model.Tuesday}},
	{re: regexp.MustCompile(`(?i)\b(?:wednesdays?|wed)\b`), days: []model.Weekday{model.Wednesday}},
	{re: regexp.MustCompile(`(?i)\b(?:thursdays?|thurs|thur|thu)\b`), days: []model.Weekday{model.Thursday}},
	{re: regexp.MustCompile(`(?i)\b(?:fridays?|fri)\b`), days: []model.Weekday{model.Friday}},
	{re: regexp.MustCompile(`(?i)\b(?:saturdays?|sat)\b`), days: []model.Weekday{model.Saturday}},
	{re: regexp.MustCompile(`(?i)\b(?:sundays?|sun)\b`), days: []model.Weekday{model.Sunday}},
}

// canonicalDays maps one day token ("Fri", "fridays", "weekend") to days.
func canonicalDays(token string) []model.Weekday {
	t := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(token)), ".")
	switch {
	case strings.HasPrefix(t, "weekend"):
		return weekend
	case strings.HasPrefix(t, "weekday"):
		return weekdays
	case strings.HasPrefix(t, "mon"):
		return []model.Weekday{model.Monday}
	case strings.HasPrefix(t, "tu"):
		return []model.Weekday{model.Tuesday}
	case strings.HasPrefix(t, "wed"):
		return []model.Weekday{model.Wednesday}
	case strings.HasPrefix(t, "th"):
		return []model.Weekday{model.Thursday}
	case strings.HasPrefix(t, "fri"):
		return []model.Weekday{model.Friday}
	case strings.HasPrefix(t, "sat"):
		return []model.Weekday{model.Saturday}
	case strings.HasPrefix(t, "sun"):
		return []model.Weekday{model.Sunday}
	}
	return nil
}

// AvoidDays returns the days named in "avoid ..." clauses, e.g.
// "avoid Fridays", "avoid Mon and Wed", "avoid weekends".
func AvoidDays(text string) []model.Weekday {
	var out []model.Weekday
	for _, m := range avoidRe.FindAllStringSubmatch(text, -1) {
		for _, tok := range dayTokenRe.FindAllString(m[1], -1) {
			out = append(out, canonicalDays(tok)...)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return model.SortWeekdays(out)
}

// Days returns the union of every lexicon entry found in text, ignoring
// days that only appear inside avoid clauses. compound reports whether a
// group token such as "Tu/Th" or "weekdays" was present.
func Days(text string) (days []model.Weekday, compound bool) {
	masked := maskAvoid(text)
	for _, e := range lexicon {
		if e.re.MatchString(masked) {
			days = append(days, e.days...)
			compound = compound || e.compound
		}
	}
	if len(days) == 0 {
		return nil, compound
	}
	return model.SortWeekdays(days), compound
}

// maskAvoid blanks avoid clauses so their day names are not read as targets.
func maskAvoid(text string) string {
	return avoidRe.ReplaceAllStringFunc(text, func(s string) string {
		return strings.Repeat(" ", len(s))
	})
}
