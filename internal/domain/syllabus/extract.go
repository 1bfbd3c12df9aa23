// Package syllabus finds dated academic events (exams, assignments, quizzes,
// projects) in syllabus text.
package syllabus

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/temporal"
)

const (
	// DefaultChunkSize and DefaultChunkOverlap size the splitter, in characters.
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200

	contextRadius     = 120
	titleRadius       = 100
	descriptionRadius = 200
)

// idNamespace scopes deterministic event IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("studyplan.syllabus.event"))

// Extractor finds events in syllabus text. It holds no mutable state.
type Extractor struct {
	parser       *temporal.Parser
	chunkSize    int
	chunkOverlap int
}

// New constructs an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		parser:       temporal.New(),
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze normalizes and splits text, reads the course header, and extracts
// events using the semester year as the default year.
func (e *Extractor) Analyze(text string) (model.SyllabusAnalysis, []string) {
	chunks := Split(Normalize(text), e.chunkSize, e.chunkOverlap)
	info := CourseInfo(strings.Join(chunks, " "))
	events := e.ExtractEvents(chunks, DefaultYear(info.Semester))
	for i := range events {
		events[i].Course = info.Name
	}
	return model.SyllabusAnalysis{
		Events:     events,
		CourseInfo: info,
		Summary:    fmt.Sprintf("Extracted %d events from syllabus", len(events)),
	}, chunks
}

// ExtractEvents returns the events found in chunks, deduplicated by
// title, date and type (first occurrence wins) and sorted by date.
// defaultYear of 0 means "use the current year".
func (e *Extractor) ExtractEvents(chunks []string, defaultYear int) []model.SyllabusEvent {
	var events []model.SyllabusEvent
	for _, chunk := range chunks {
		for _, m := range findDates(chunk) {
			if ev, ok := e.event(chunk, m, defaultYear); ok {
				events = append(events, ev)
			}
		}
	}
	events = dedupe(events)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events
}

func (e *Extractor) event(chunk string, m dateMatch, defaultYear int) (model.SyllabusEvent, bool) {
	ctx, _ := window(chunk, m.start, m.end, contextRadius)
	if families[m.family].numeric && !hasYear(m.text) && !eventHintRe.MatchString(ctx) {
		return model.SyllabusEvent{}, false
	}
	date, ok := e.parser.ParseDate(m.text, defaultYear)
	if !ok {
		return model.SyllabusEvent{}, false
	}
	typ := classify(ctx)
	tctx, off := window(chunk, m.start, m.end, titleRadius)
	dctx, _ := window(chunk, m.start, m.end, descriptionRadius)
	ev := model.SyllabusEvent{
		Title:       title(tctx, m.start-off, m.end-off, typ, date),
		Date:        date.In(e.parser.Location()),
		Type:        typ,
		Description: description(dctx),
		Confidence:  confidence(m.text, typ),
		SourceText:  m.text,
	}
	ev.ID = uuid.NewSHA1(idNamespace, []byte(Key(ev))).String()
	return ev, true
}

// Key is the dedupe key of an event: title|date|type.
func Key(ev model.SyllabusEvent) string {
	return ev.Title + "|" + ev.Date.Format("2006-01-02") + "|" + string(ev.Type)
}

func dedupe(events []model.SyllabusEvent) []model.SyllabusEvent {
	seen := make(map[string]bool, len(events))
	out := events[:0]
	for _, ev := range events {
		k := Key(ev)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, ev)
	}
	return out
}

// hasYear reports a four-digit run or a third numeric component.
func hasYear(raw string) bool {
	if fourDigitRe.MatchString(raw) {
		return true
	}
	return len(strings.FieldsFunc(raw, func(r rune) bool { return r == '/' || r == '-' || r == '.' })) >= 3
}

// window returns up to n runes on either side of text[start:end] and the
// byte offset where the window begins.
func window(text string, start, end, n int) (string, int) {
	lo := start
	for i := 0; i < n && lo > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:lo])
		lo -= size
	}
	hi := end
	for i := 0; i < n && hi < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[hi:])
		hi += size
	}
	return text[lo:hi], lo
}
