package syllabus

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	hyphenBreakRe = regexp.MustCompile(`-\n`)
	newlinesRe    = regexp.MustCompile(`\n+`)
	blanksRe      = regexp.MustCompile(`[ \t]+`)
)

// separators are tried in order by the recursive splitter.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Normalize cleans text extracted from a document: CRLF becomes LF,
// hyphenated line breaks are joined, runs of newlines and of spaces collapse.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = hyphenBreakRe.ReplaceAllString(text, "")
	text = newlinesRe.ReplaceAllString(text, "\n")
	text = blanksRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Split breaks text into chunks of at most size characters, each sharing up
// to overlap characters with the previous one. It prefers to cut on
// paragraph, line, sentence and word boundaries, in that order.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	var out []string
	for _, c := range splitRecursive(text, separators, size, overlap) {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func splitRecursive(text string, seps []string, size, overlap int) []string {
	sep, rest := seps[len(seps)-1], []string(nil)
	for i, s := range seps {
		if s == "" || strings.Contains(text, s) {
			sep, rest = s, seps[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
	} else {
		pieces = strings.Split(text, sep)
	}

	var out, good []string
	for _, p := range pieces {
		if p == "" {
			continue
		}
		if runeLen(p) < size {
			good = append(good, p)
			continue
		}
		if len(good) > 0 {
			out = append(out, merge(good, sep, size, overlap)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, p)
			continue
		}
		out = append(out, splitRecursive(p, rest, size, overlap)...)
	}
	if len(good) > 0 {
		out = append(out, merge(good, sep, size, overlap)...)
	}
	return out
}

// merge packs pieces into chunks no longer than size, carrying a tail of at
// most overlap characters into the next chunk.
func merge(pieces []string, sep string, size, overlap int) []string {
	var out, cur []string
	for _, p := range pieces {
		if len(cur) > 0 && joinedLen(append(cur, p), sep) > size {
			out = append(out, strings.Join(cur, sep))
			for len(cur) > 0 && (joinedLen(cur, sep) > overlap || joinedLen(append(cur, p), sep) > size) {
				cur = cur[1:]
			}
		}
		cur = append(cur, p)
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, sep))
	}
	return out
}

func joinedLen(pieces []string, sep string) int {
	if len(pieces) == 0 {
		return 0
	}
	n := runeLen(sep) * (len(pieces) - 1)
	for _, p := range pieces {
		n += runeLen(p)
	}
	return n
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
