package constraint

import (
	"regexp"
	"strings"
	"unicode"
)

// UntitledEvent is the title used when nothing in the request names the event.
const UntitledEvent = "Untitled Event"

const maxTitleLen = 80

var (
	forClauseRe = regexp.MustCompile(`(?i)\bfor\s+([^;,.!?\n]+)`)
	leadVerbRe  = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:block(?:\s+off)?|schedule|add|book|put|create|set\s+up|plan|reserve|make|find\s+time\s+for)\s+` +
		`(?:a\s+|an\s+|the\s+|some\s+|my\s+)?`)
	locationRe = regexp.MustCompile(`(?i)\b(at|in|room|rm\.?|building|bldg\.?)\s+`)
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// stopWords end a title or location phrase.
var stopWords = map[string]bool{
	"at": true, "on": true, "from": true, "every": true, "each": true, "for": true,
	"with": true, "avoid": true, "avoiding": true, "except": true, "until": true,
	"till": true, "before": true, "after": true, "starting": true, "during": true,
	"tomorrow": true, "today": true, "tonight": true, "next": true, "this": true,
	"in": true, "to": true, "between": true, "around": true, "by": true,
	"daily": true, "weekly": true, "monthly": true, "and": true, "or": true,
	"morning": true, "mornings": true, "afternoon": true, "afternoons": true,
	"evening": true, "evenings": true, "night": true, "nights": true,
}

// rejectLead are first words that make an "at"/"in" phrase a time rather than a place.
var rejectLead = map[string]bool{
	"least": true, "most": true, "all": true, "any": true, "noon": true, "midnight": true,
	"a": true, "an": true,
}

// Title guesses an event title: a "for <phrase>" clause, then the noun phrase
// after a leading verb, then the leading words of the request.
func Title(text string) string {
	for _, m := range forClauseRe.FindAllStringSubmatch(text, -1) {
		if t := phrase(m[1]); acceptableTitle(t) {
			return t
		}
	}
	rest := leadVerbRe.ReplaceAllString(text, "")
	if t := phrase(rest); acceptableTitle(t) {
		return t
	}
	return UntitledEvent
}

func acceptableTitle(t string) bool {
	if t == "" {
		return false
	}
	r := []rune(t)
	return unicode.IsLetter(r[0])
}

// phrase takes words from the start of s until a stop word, a day or time
// token, a number, or punctuation.
func phrase(s string) string {
	var words []string
	for _, raw := range strings.Fields(s) {
		w := strings.TrimRight(raw, ";,.!?:")
		lw := strings.ToLower(w)
		if w == "" || stopWords[lw] || startsWithDigit(w) || isDayToken(lw) {
			break
		}
		if strings.ContainsAny(w, "/@") {
			break
		}
		words = append(words, w)
		if w != raw {
			break
		}
	}
	out := strings.Join(words, " ")
	if r := []rune(out); len(r) > maxTitleLen {
		out = strings.TrimSpace(string(r[:maxTitleLen]))
	}
	return out
}

// isDayToken reports whether the whole word is a day token, so "Sundae" or
// "Monster" are left alone. Group tokens such as "MWF" count.
func isDayToken(w string) bool {
	if whole(dayTokenRe, w) {
		return true
	}
	for _, e := range lexicon {
		if whole(e.re, w) {
			return true
		}
	}
	return false
}

func whole(re *regexp.Regexp, w string) bool {
	loc := re.FindStringIndex(w)
	return loc != nil && loc[0] == 0 && loc[1] == len(w)
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// Location returns the first place phrase in text: "in Library Room 204",
// "at the gym", "room 3B".
func Location(text string) string {
	for _, idx := range locationRe.FindAllStringSubmatchIndex(text, -1) {
		kw := strings.ToLower(strings.TrimSuffix(text[idx[2]:idx[3]], "."))
		body := text[idx[1]:]
		if i := strings.IndexAny(body, ";,!?\n"); i >= 0 {
			body = body[:i]
		}
		fields := strings.Fields(body)
		if len(fields) == 0 {
			continue
		}
		lead := strings.ToLower(strings.TrimRight(fields[0], ";,.!?:"))
		if kw == "at" || kw == "in" {
			if startsWithDigit(lead) || rejectLead[lead] || stopWords[lead] || isDayToken(lead) {
				continue
			}
			if lead == "the" || lead == "my" {
				if len(fields) < 2 {
					continue
				}
				next := strings.ToLower(fields[1])
				if stopWords[next] || isDayToken(next) {
					continue
				}
			}
			if loc := placePhrase(fields); loc != "" {
				return loc
			}
			continue
		}
		if loc := placePhrase(fields); loc != "" {
			return strings.TrimSpace(titleWord(kw) + " " + loc)
		}
	}
	return ""
}

// placePhrase is phrase with digits allowed, for room numbers.
func placePhrase(fields []string) string {
	var words []string
	for i, raw := range fields {
		w := strings.TrimRight(raw, ";,.!?:")
		lw := strings.ToLower(w)
		if w == "" || i > 0 && stopWords[lw] || isDayToken(lw) || strings.Contains(w, "@") {
			break
		}
		if startsWithDigit(w) && looksLikeTime(lw) {
			break
		}
		words = append(words, w)
		if w != raw {
			break
		}
	}
	return strings.Join(words, " ")
}

func looksLikeTime(w string) bool {
	return strings.Contains(w, ":") || strings.HasSuffix(w, "am") || strings.HasSuffix(w, "pm")
}

func titleWord(kw string) string {
	switch kw {
	case "rm":
		return "Room"
	case "bldg":
		return "Building"
	}
	return strings.ToUpper(kw[:1]) + kw[1:]
}

// Attendees returns the distinct e-mail addresses in text, in order.
func Attendees(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range emailRe.FindAllString(text, -1) {
		k := strings.ToLower(e)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}
