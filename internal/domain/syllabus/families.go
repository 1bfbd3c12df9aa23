package syllabus

import (
	"regexp"
	"sort"

	"github.com/okian/studyplan/internal/domain/temporal"
)

// family is one date-pattern family. Families are listed in priority order;
// priority only breaks ties between equally long overlapping matches.
type family struct {
	name    string
	re      *regexp.Regexp
	numeric bool
}

var families = []family{
	{
		name: "month_name",
		re: regexp.MustCompile(`(?i)\b(?:` + temporal.MonthPattern + `)\.?\s+\d{1,2}(?:st|nd|rd|th)?\b(?:,?\s+\d{4}\b|,\s*\d{2}\b)?` +
			`|\b\d{1,2}(?:st|nd|rd|th)?\s+(?:of\s+)?(?:` + temporal.MonthPattern + `)\b\.?(?:,?\s+\d{4}\b)?`),
	},
	{
		name:    "numeric",
		re:      regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b|\b\d{1,2}[/-]\d{1,2}(?:[/-](?:\d{4}|\d{2}))?\b`),
		numeric: true,
	},
	{
		// Without a year the day must have two digits, so "2.5 hours" is not a date.
		name:    "numeric_dot",
		re:      regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.(?:\d{4}|\d{2})\b|\b\d{1,2}\.\d{2}\b`),
		numeric: true,
	},
}

// dateMatch is one accepted date substring of a chunk.
type dateMatch struct {
	start, end int
	text       string
	family     int
}

// findDates scans the whole chunk with every family, then resolves
// overlapping spans: the longest match wins, ties go to family priority and
// then to the earliest start. Results are ordered by position.
func findDates(text string) []dateMatch {
	var all []dateMatch
	for fi, f := range families {
		for _, loc := range f.re.FindAllStringIndex(text, -1) {
			all = append(all, dateMatch{start: loc[0], end: loc[1], text: text[loc[0]:loc[1]], family: fi})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		li, lj := all[i].end-all[i].start, all[j].end-all[j].start
		if li != lj {
			return li > lj
		}
		if all[i].family != all[j].family {
			return all[i].family < all[j].family
		}
		return all[i].start < all[j].start
	})

	var kept []dateMatch
	for _, m := range all {
		if overlaps(kept, m) {
			continue
		}
		kept = append(kept, m)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].start < kept[j].start })
	return kept
}

func overlaps(kept []dateMatch, m dateMatch) bool {
	for _, k := range kept {
		if m.start < k.end && k.start < m.end {
			return true
		}
	}
	return false
}
