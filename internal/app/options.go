package service

import (
	"time"

	"github.com/okian/studyplan/internal/adapters/calendar"
	"github.com/okian/studyplan/internal/adapters/repository"
	"github.com/okian/studyplan/internal/domain/conflict"
	"github.com/okian/studyplan/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the store. The caller keeps ownership and closes it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCalendar sets the calendar provider.
func WithCalendar(p calendar.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.calendar = p
		}
	}
}

// WithAnalyzer enables the LLM stage of Analyze.
func WithAnalyzer(a Analyzer) Option {
	return func(s *Service) {
		s.analyzer = a
	}
}

// WithConfidenceThreshold sets the confidence an LLM analysis must exceed
// to replace the heuristic plans.
func WithConfidenceThreshold(t float64) Option {
	return func(s *Service) {
		if t >= 0 && t <= 1 {
			s.threshold = t
		}
	}
}

// WithLLMTimeout bounds each LLM call.
func WithLLMTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.llmTimeout = d
		}
	}
}

// WithQueueSize sets the capacity of the audit queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of audit writers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDedupeSize bounds the import idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithChunking sets the syllabus splitter size and overlap, in characters.
func WithChunking(size, overlap int) Option {
	return func(s *Service) {
		if size > 0 && overlap >= 0 && overlap < size {
			s.chunkSize = size
			s.chunkOverlap = overlap
		}
	}
}

// WithUpcomingDays sets the default window of UpcomingEvents.
func WithUpcomingDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.upcomingDays = days
		}
	}
}

// WithConflictOptions configures the conflict resolver.
func WithConflictOptions(opts ...conflict.Option) Option {
	return func(s *Service) {
		s.conflictOpts = append(s.conflictOpts, opts...)
	}
}

// WithLocation sets the zone relative times are resolved in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides ID generation for plans, documents, sessions
// and audit entries.
func WithIDGenerator(f func() string) Option {
	return func(s *Service) {
		if f != nil {
			s.newID = f
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
