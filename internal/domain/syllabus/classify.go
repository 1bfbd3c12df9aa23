package syllabus

import (
	"math"
	"regexp"
	"strings"

	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/temporal"
)

const (
	baseConfidence    = 0.5
	keywordBonus      = 0.3
	yearBonus         = 0.1
	monthDayBonus     = 0.1
	maxConfidence     = 0.95
	minDescriptionLen = 10
)

// typeRule maps context keywords to an event type. Rules are checked in order.
type typeRule struct {
	typ model.EventType
	re  *regexp.Regexp
}

var typeRules = []typeRule{
	{typ: model.TypeExam, re: regexp.MustCompile(`(?i)\b(?:finals?|midterms?|exams?|tests?)\b`)},
	{typ: model.TypeQuiz, re: regexp.MustCompile(`(?i)\bquiz(?:zes)?\b`)},
	{typ: model.TypeAssignment, re: regexp.MustCompile(`(?i)\b(?:assignments?|homework|hw\d*|deliverables?|reports?|essays?|papers?|due)\b`)},
	{typ: model.TypeProject, re: regexp.MustCompile(`(?i)\bprojects?\b`)},
}

var (
	eventHintRe = regexp.MustCompile(`(?i)exam|final|midterm|quiz|assignment|homework|project|due|deadline`)
	fourDigitRe = regexp.MustCompile(`\d{4}`)
	monthDayRe  = regexp.MustCompile(`[A-Za-z]+\s+\d{1,2}`)
	sentenceRe  = regexp.MustCompile(`[.!?]`)
	spaceRe     = regexp.MustCompile(`\s+`)

	// Keywords that confirm a type when they appear in the matched text itself.
	confirmRe = map[model.EventType]*regexp.Regexp{
		model.TypeExam:       regexp.MustCompile(`(?i)exam|test|final|midterm`),
		model.TypeAssignment: regexp.MustCompile(`(?i)assignment|homework|hw|project|due`),
		model.TypeQuiz:       regexp.MustCompile(`(?i)quiz`),
	}

	// Group 1 is the phrase and group 2 the keyword in titleBefore; the
	// order is reversed in titleAfter.
	titleBefore = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+((?i:exam|test|assignment|quiz|project))\b`)
	titleAfter  = regexp.MustCompile(`((?i:\bexam|\btest|\bassignment|\bquiz|\bproject))\s+(\d{1,2}[A-Za-z]?\b|[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)
)

// leadingFiller are capitalized words dropped from the front of a title phrase.
var leadingFiller = map[string]bool{"The": true, "A": true, "An": true, "On": true, "Due": true, "By": true, "Our": true}

// classify infers the event type from the context window.
func classify(context string) model.EventType {
	for _, r := range typeRules {
		if r.re.MatchString(context) {
			return r.typ
		}
	}
	return model.TypeOther
}

// title finds the capitalized phrase adjacent to an event keyword that lies
// closest to the date. Phrases before a keyword give "<phrase> <Keyword>",
// phrases after give "<Keyword> <phrase>", with the keyword as matched.
// Without one the title is "<Type> - <date>".
func title(window string, dateStart, dateEnd int, typ model.EventType, date temporal.Date) string {
	best, bestDist := "", math.MaxInt
	consider := func(re *regexp.Regexp, before bool) {
		for _, loc := range re.FindAllStringSubmatchIndex(window, -1) {
			phraseAt, keywordAt := 2, 4
			if !before {
				phraseAt, keywordAt = 4, 2
			}
			phrase := cleanPhrase(window[loc[phraseAt]:loc[phraseAt+1]])
			if phrase == "" {
				continue
			}
			d := distance(loc[0], loc[1], dateStart, dateEnd)
			if d >= bestDist {
				continue
			}
			bestDist = d
			keyword := keywordTitle(window[loc[keywordAt]:loc[keywordAt+1]])
			if before {
				best = phrase + " " + keyword
			} else {
				best = keyword + " " + phrase
			}
		}
	}
	consider(titleBefore, true)
	consider(titleAfter, false)
	if best != "" {
		return best
	}
	return typ.Title() + " - " + date.String()
}

// keywordTitle capitalizes a matched keyword: "QUIZ" and "quiz" give "Quiz".
func keywordTitle(k string) string {
	k = strings.ToLower(k)
	return strings.ToUpper(k[:1]) + k[1:]
}

// cleanPhrase drops filler words and rejects phrases that are dates.
func cleanPhrase(p string) string {
	words := strings.Fields(p)
	for len(words) > 0 && leadingFiller[words[0]] {
		words = words[1:]
	}
	if len(words) == 0 {
		return ""
	}
	if _, ok := temporal.LookupMonth(words[0]); ok {
		return ""
	}
	if _, ok := model.ParseWeekday(words[0]); ok {
		return ""
	}
	return strings.Join(words, " ")
}

func distance(s, e, ds, de int) int {
	switch {
	case e <= ds:
		return ds - e
	case s >= de:
		return s - de
	default:
		return 0
	}
}

// description returns the first sentence longer than ten characters.
func description(window string) string {
	for _, s := range sentenceRe.Split(window, -1) {
		s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
		if len(s) > minDescriptionLen {
			return s
		}
	}
	return ""
}

// confidence scores one match: 0.5 base, +0.3 when the matched text confirms
// the type, +0.1 for a four-digit year, +0.1 for a "Month Day" shape.
func confidence(raw string, typ model.EventType) float64 {
	c := baseConfidence
	if re, ok := confirmRe[typ]; ok && re.MatchString(raw) {
		c += keywordBonus
	}
	if fourDigitRe.MatchString(raw) {
		c += yearBonus
	}
	if monthDayRe.MatchString(raw) {
		c += monthDayBonus
	}
	return math.Round(math.Min(c, maxConfidence)*100) / 100
}
