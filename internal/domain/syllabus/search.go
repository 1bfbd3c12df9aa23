package syllabus

import (
	"sort"
	"strings"
	"time"

	"github.com/okian/studyplan/internal/domain/model"
)

const (
	// DefaultUpcomingDays is the Upcoming window when none is given.
	DefaultUpcomingDays = 30
	// DefaultSnippetLimit caps SearchChunks when no limit is given.
	DefaultSnippetLimit = 5
)

// Snippet is a chunk ranked against a query.
type Snippet struct {
	SyllabusID string  `json:"syllabusId"`
	ChunkIndex int     `json:"chunkIndex"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// Search keeps events whose title, description or type contains query,
// case-insensitively. An empty query keeps everything.
func Search(events []model.SyllabusEvent, query string) []model.SyllabusEvent {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.SyllabusEvent, 0, len(events))
	for _, ev := range events {
		if q == "" ||
			strings.Contains(strings.ToLower(ev.Title), q) ||
			strings.Contains(strings.ToLower(ev.Description), q) ||
			strings.Contains(string(ev.Type), q) {
			out = append(out, ev)
		}
	}
	return out
}

// Upcoming returns events dated from the start of now's day through
// now+days, sorted by date.
func Upcoming(events []model.SyllabusEvent, now time.Time, days int) []model.SyllabusEvent {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := now.AddDate(0, 0, days)
	out := make([]model.SyllabusEvent, 0, len(events))
	for _, ev := range events {
		if !ev.Date.Before(from) && !ev.Date.After(to) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// SearchChunks ranks chunks by how often the query's terms occur in them.
// Chunks without any term are dropped; ties keep document order.
func SearchChunks(chunks []model.Chunk, query string, limit int) []Snippet {
	if limit <= 0 {
		limit = DefaultSnippetLimit
	}
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil
	}
	var out []Snippet
	for _, c := range chunks {
		body := strings.ToLower(c.Content)
		hits, matched := 0, 0
		for _, t := range terms {
			if n := strings.Count(body, t); n > 0 {
				hits += n
				matched++
			}
		}
		if hits == 0 {
			continue
		}
		out = append(out, Snippet{
			SyllabusID: c.SyllabusID,
			ChunkIndex: c.Index,
			Content:    c.Content,
			Score:      float64(matched)/float64(len(terms)) + float64(hits)/100,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func queryTerms(q string) []string {
	seen := map[string]bool{}
	var terms []string
	for _, f := range strings.Fields(strings.ToLower(q)) {
		f = strings.Trim(f, ".,;:!?\"'()")
		if len(f) < 2 || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}
