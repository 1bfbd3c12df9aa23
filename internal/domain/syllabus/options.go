package syllabus

import "github.com/okian/studyplan/internal/domain/temporal"

// Option configures an Extractor.
type Option func(*Extractor)

// WithParser sets the temporal parser used to resolve dates.
func WithParser(p *temporal.Parser) Option {
	return func(e *Extractor) {
		if p != nil {
			e.parser = p
		}
	}
}

// WithChunking overrides the splitter's chunk size and overlap, in characters.
func WithChunking(size, overlap int) Option {
	return func(e *Extractor) {
		if size > 0 {
			e.chunkSize = size
		}
		if overlap >= 0 && overlap < e.chunkSize {
			e.chunkOverlap = overlap
		}
	}
}
