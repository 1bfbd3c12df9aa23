package temporal

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// eveningCutoff is the hour below which a time without a meridiem is read
// as p.m. Hour 0 written with minutes ("0:30", "00:15") stays midnight.
const eveningCutoff = 8

// Clock is a normalized wall-clock time.
type Clock struct {
	Hour   int `json:"hours"`
	Minute int `json:"minutes"`
}

// String renders HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int { return c.Hour*60 + c.Minute }

// timeMatcher is one entry of the time-of-day cascade.
type timeMatcher struct {
	name string
	re   *regexp.Regexp
	// groups: hour, minute (may be empty), meridiem (may be empty)
	extract func(m []string) (h, min, mer string)
}

// timeMatchers are tried in order: H:MM meridiem, H meridiem, H:MM, bare H.
var timeMatchers = []timeMatcher{
	{
		name:    "hour_minute_meridiem",
		re:      regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*([ap])\.?m\b\.?`),
		extract: func(m []string) (string, string, string) { return m[1], m[2], m[3] },
	},
	{
		name:    "hour_meridiem",
		re:      regexp.MustCompile(`(?i)\b(\d{1,2})\s*([ap])\.?m\b\.?`),
		extract: func(m []string) (string, string, string) { return m[1], "", m[2] },
	},
	{
		name:    "hour_minute",
		re:      regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`),
		extract: func(m []string) (string, string, string) { return m[1], m[2], "" },
	},
	{
		name:    "bare_hour",
		re:      regexp.MustCompile(`\b(\d{1,2})\b`),
		extract: func(m []string) (string, string, string) { return m[1], "", "" },
	},
}

// ParseTime parses the first recognizable time of day in token.
// It returns false when no matcher applies or the result is out of range.
func ParseTime(token string) (Clock, bool) {
	for _, tm := range timeMatchers {
		m := tm.re.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		h, mm, mer := tm.extract(m)
		return normalize(h, mm, mer)
	}
	return Clock{}, false
}

// normalize applies the meridiem rules:
// pm and hour != 12 adds 12, am and hour == 12 is midnight, no meridiem and
// hour < 8 is read as evening unless it is an H:MM form of hour 0.
func normalize(hs, ms, mer string) (Clock, bool) {
	h, err := strconv.Atoi(hs)
	if err != nil {
		return Clock{}, false
	}
	m := 0
	if ms != "" {
		if m, err = strconv.Atoi(ms); err != nil {
			return Clock{}, false
		}
	}
	switch strings.ToLower(mer) {
	case "p":
		if h > 12 {
			return Clock{}, false
		}
		if h != 12 {
			h += 12
		}
	case "a":
		if h > 12 {
			return Clock{}, false
		}
		if h == 12 {
			h = 0
		}
	default:
		if h < eveningCutoff && (ms == "" || h != 0) {
			h += 12
		}
	}
	if h > 23 || m > 59 {
		return Clock{}, false
	}
	return Clock{Hour: h, Minute: m}, true
}

// Span is a time found in free text. Ranges carry an End.
type Span struct {
	Start  Clock  `json:"start"`
	End    Clock  `json:"end"`
	HasEnd bool   `json:"hasEnd"`
	Text   string `json:"text"`
	Pos    int    `json:"pos"`
}

// DurationMinutes returns the length of a range, or 0 for single times.
// Ranges that wrap past midnight are measured forward.
func (s Span) DurationMinutes() int {
	if !s.HasEnd {
		return 0
	}
	d := s.End.Minutes() - s.Start.Minutes()
	if d <= 0 {
		d += 24 * 60
	}
	return d
}

var (
	rangeRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(?:([ap])\.?m\.?)?\s*(?:-|–|—|\bto\b|\buntil\b|\btill\b)\s*(\d{1,2})(?::(\d{2}))?\s*(?:([ap])\.?m\b\.?)?`)
	// single-token scanners in priority order; ranges are found first.
	singleScanners = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\b\.?`),
		regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`),
		regexp.MustCompile(`(?i)(?:\bat|@)\s*(\d{1,2})\b`),
	}
)

// ScanTimes returns every time token in text ordered by position. Ranges such
// as "7-9pm" are reported once with both ends; their endpoints are not
// reported again as single tokens.
func ScanTimes(text string) []Span {
	var spans []Span
	taken := make([][2]int, 0, 4)

	for _, loc := range rangeRe.FindAllStringSubmatchIndex(text, -1) {
		if dateLike(text, loc[0], loc[1]) || unitFollows(text, loc[1]) {
			continue
		}
		g := groups(text, loc)
		start, end, ok := resolveRange(g[1], g[2], g[3], g[4], g[5], g[6])
		if !ok {
			continue
		}
		spans = append(spans, Span{Start: start, End: end, HasEnd: true, Text: g[0], Pos: loc[0]})
		taken = append(taken, [2]int{loc[0], loc[1]})
	}

	for i, re := range singleScanners {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			if overlapsAny(taken, loc[0], loc[1]) || dateLike(text, loc[0], loc[1]) || unitFollows(text, loc[1]) {
				continue
			}
			g := groups(text, loc)
			var c Clock
			var ok bool
			switch i {
			case 0:
				c, ok = normalize(g[1], g[2], g[3])
			case 1:
				c, ok = normalize(g[1], g[2], "")
			default:
				c, ok = normalize(g[1], "", "")
			}
			if !ok {
				continue
			}
			spans = append(spans, Span{Start: c, Text: g[0], Pos: loc[0]})
			taken = append(taken, [2]int{loc[0], loc[1]})
		}
	}

	sort.SliceStable(spans, func(a, b int) bool { return spans[a].Pos < spans[b].Pos })
	return spans
}

// resolveRange propagates a meridiem from one end to the other, so "7-9pm"
// reads as 19:00-21:00 and "11-1pm" as 11:00-13:00.
func resolveRange(sh, sm, smer, eh, em, emer string) (Clock, Clock, bool) {
	end, ok := normalize(eh, em, emer)
	if !ok {
		return Clock{}, Clock{}, false
	}
	if smer == "" && emer != "" {
		start, ok := normalize(sh, sm, emer)
		if ok && start.Minutes() < end.Minutes() {
			return start, end, true
		}
		if strings.EqualFold(emer, "p") {
			if start, ok = normalize(sh, sm, "a"); ok && start.Minutes() < end.Minutes() {
				return start, end, true
			}
		}
	}
	start, ok := normalize(sh, sm, smer)
	if !ok {
		return Clock{}, Clock{}, false
	}
	if emer == "" && end.Minutes() <= start.Minutes() && end.Hour < 12 {
		if e := (Clock{Hour: end.Hour + 12, Minute: end.Minute}); e.Minutes() > start.Minutes() {
			end = e
		}
	}
	return start, end, true
}

// dateLike rejects matches glued to date separators, e.g. "10/15" or "3.4".
func dateLike(text string, start, end int) bool {
	if end < len(text) {
		c := text[end]
		if (c == '/' || c == '.' || c == '-') && end+1 < len(text) && isDigit(text[end+1]) {
			return true
		}
	}
	if start > 0 {
		c := text[start-1]
		if (c == '/' || c == '.' || c == '-') && start > 1 && isDigit(text[start-2]) {
			return true
		}
	}
	return false
}

var unitRe = regexp.MustCompile(`(?i)^\s*(?:hours?|hrs?|minutes?|mins?)\b`)

// unitFollows reports whether a duration unit follows end, as in "2 to 3 hours".
func unitFollows(text string, end int) bool {
	return unitRe.MatchString(text[end:])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func overlapsAny(taken [][2]int, start, end int) bool {
	for _, t := range taken {
		if start < t[1] && end > t[0] {
			return true
		}
	}
	return false
}

// groups expands submatch indices into strings, "" for absent groups.
func groups(text string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}
