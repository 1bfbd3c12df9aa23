package constraint

import (
	"regexp"

	"github.com/okian/studyplan/internal/domain/model"
)

// frequencyRule is one entry of the frequency precedence list.
type frequencyRule struct {
	re   *regexp.Regexp
	freq model.Frequency
}

// frequencyRules are checked in order; the first match wins.
var frequencyRules = []frequencyRule{
	{re: regexp.MustCompile(`(?i)\bdaily\b|\bevery\s*day\b|\beach\s+day\b`), freq: model.Daily},
	{re: regexp.MustCompile(`(?i)\bweekly\b|\bevery\s+week\b|\beach\s+week\b`), freq: model.Weekly},
	{re: regexp.MustCompile(`(?i)\bmonthly\b|\bevery\s+month\b|\beach\s+month\b`), freq: model.Monthly},
	{re: regexp.MustCompile(`(?i)\b\d+\s*x?\s*(?:times?\s*)?(?:per|a|/)\s*week\b`), freq: model.Weekly},
}

// Frequency returns the explicit repeat unit named in text, or "".
func Frequency(text string) model.Frequency {
	for _, r := range frequencyRules {
		if r.re.MatchString(text) {
			return r.freq
		}
	}
	return ""
}

// impliesWeekly reports phrasing that repeats by weekday without naming a
// frequency: "every Monday", "Tuesdays".
func impliesWeekly(text string) bool {
	masked := maskAvoid(text)
	return everyDayRe.MatchString(masked) || pluralRe.MatchString(masked)
}
