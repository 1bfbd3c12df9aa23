// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
//
// It wires the rule-based planner, the optional LLM extractor, the conflict
// resolver, the syllabus extractor, a calendar provider and the store, and
// writes an audit entry for every user-visible operation through the audit
// queue.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/studyplan/internal/adapters/calendar"
	"github.com/okian/studyplan/internal/adapters/export"
	"github.com/okian/studyplan/internal/adapters/llm"
	auditqueue "github.com/okian/studyplan/internal/adapters/mq/queue"
	workerpool "github.com/okian/studyplan/internal/adapters/mq/worker"
	"github.com/okian/studyplan/internal/adapters/repository"
	"github.com/okian/studyplan/internal/domain/conflict"
	"github.com/okian/studyplan/internal/domain/dedupe"
	"github.com/okian/studyplan/internal/domain/planner"
	"github.com/okian/studyplan/internal/domain/syllabus"
	"github.com/okian/studyplan/internal/domain/temporal"
	"github.com/okian/studyplan/pkg/logger"
	"github.com/okian/studyplan/pkg/metrics"
)

// Defaults.
const (
	DefaultConfidenceThreshold = 0.6
	DefaultLLMTimeout          = 8 * time.Second
	DefaultQueueSize           = 1024
	DefaultWorkerCount         = 2
	DefaultDedupeSize          = dedupe.DefaultMaxSize
	importEventLength          = time.Hour
)

// Analyzer extracts scheduling intent with an external model.
type Analyzer interface {
	Analyze(ctx context.Context, input string) (llm.Analysis, error)
}

// Service implements the API dependencies for the scheduling assistant.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	store    repository.Store
	calendar calendar.Provider
	analyzer Analyzer
	deduper  dedupe.Deduper
	queue    auditqueue.Queue
	pool     *workerpool.Pool

	// Core components
	parser    *temporal.Parser
	planner   *planner.Planner
	extractor *syllabus.Extractor
	resolver  *conflict.Resolver
	exporter  *export.Exporter

	// Configuration
	threshold     float64
	llmTimeout    time.Duration
	queueSize     int
	workerCount   int
	dedupeSize    int
	chunkSize     int
	chunkOverlap  int
	upcomingDays  int
	conflictOpts  []conflict.Option
	location      *time.Location
	now           func() time.Time
	newID         func() string
	ownsStore     bool
	calendarLabel string

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service. Without WithStore and WithCalendar it runs
// on the in-memory store and calendar.
func New(opts ...Option) *Service {
	s := &Service{
		threshold:    DefaultConfidenceThreshold,
		llmTimeout:   DefaultLLMTimeout,
		queueSize:    DefaultQueueSize,
		workerCount:  DefaultWorkerCount,
		dedupeSize:   DefaultDedupeSize,
		chunkSize:    syllabus.DefaultChunkSize,
		chunkOverlap: syllabus.DefaultChunkOverlap,
		upcomingDays: syllabus.DefaultUpcomingDays,
		location:     time.Local,
		now:          time.Now,
		newID:        uuid.NewString,
		logger:       logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemory()
		s.ownsStore = true
	}
	if s.calendar == nil {
		s.calendar = calendar.Instrument(calendar.NewMemory())
	}
	s.calendarLabel = s.calendar.Name()

	s.parser = temporal.New(temporal.WithClock(s.clock), temporal.WithLocation(s.location))
	s.planner = planner.New(planner.WithParser(s.parser), planner.WithIDGenerator(s.newID))
	s.extractor = syllabus.New(syllabus.WithParser(s.parser), syllabus.WithChunking(s.chunkSize, s.chunkOverlap))
	s.resolver = conflict.New(s.conflictOpts...)
	s.exporter = export.New(export.WithClock(s.clock))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

func (s *Service) clock() time.Time { return s.now().In(s.location) }

// Start launches the audit queue and its worker pool. Until Start is
// called, audit entries are written to the store directly.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting scheduling service...")

	q := auditqueue.NewInMemoryQueue(auditqueue.WithCapacity(s.queueSize))
	pool := workerpool.NewPool(s.workerCount, q, s.store)

	// workers outlive the context Start was called with
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	pool.Start(runCtx)

	s.queue = q
	s.pool = pool
	s.cancel = cancel
	s.started = true

	s.logger.Info(ctx, "scheduling service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("calendar", s.calendarLabel),
		logger.Bool("llm", s.analyzer != nil),
	)
	return nil
}

// Stop drains the audit queue and shuts the workers down. A store created
// by New is closed as well.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping scheduling service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "audit pool shutdown failed", logger.Error(err))
	}
	s.cancel()
	if s.ownsStore {
		s.store.Close()
	}

	s.queue = nil
	s.pool = nil
	s.started = false
	s.logger.Info(ctx, "scheduling service stopped")
}

// Ready reports whether the store can serve requests.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ready(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"importKeys":  s.deduper.Size(),
		"calendar":    s.calendarLabel,
		"llmEnabled":  s.analyzer != nil,
	}

	if s.started {
		queueLen := s.queue.Len()
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}
