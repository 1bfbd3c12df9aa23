// Package repository persists plans, syllabi, preferences, audit entries and
// scheduling sessions.
//
// Two stores implement the same port: an in-memory store for single-process
// deployments and tests, and a PostgreSQL store on pgx.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/pkg/metrics"
)

// Drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// DefaultAuditLimit caps Audit when no limit is given.
const DefaultAuditLimit = 100

// Store provides read/write access to the service state.
type Store interface {
	// SavePlans stores generated plans for userID, replacing plans with the
	// same ID.
	SavePlans(ctx context.Context, userID string, plans []model.EventPlan) error
	// Plan returns a stored plan or ErrNotFound.
	Plan(ctx context.Context, id string) (model.EventPlan, error)

	// SaveSyllabus stores a document with its chunks and extracted events.
	SaveSyllabus(ctx context.Context, doc model.Syllabus, chunks []model.Chunk, events []model.SyllabusEvent) error
	// Syllabus returns a stored document or ErrNotFound.
	Syllabus(ctx context.Context, id string) (model.Syllabus, error)
	// SyllabusEvents returns every event extracted for userID, by date.
	SyllabusEvents(ctx context.Context, userID string) ([]model.SyllabusEvent, error)
	// Chunks returns every chunk of userID's documents in upload order.
	Chunks(ctx context.Context, userID string) ([]model.Chunk, error)

	// Preferences returns userID's preferences or ErrNotFound.
	Preferences(ctx context.Context, userID string) (model.UserPreferences, error)
	SavePreferences(ctx context.Context, prefs model.UserPreferences) error

	// AppendAudit stores entries. Entries with an existing ID are ignored.
	AppendAudit(ctx context.Context, entries ...model.AuditEntry) error
	// Audit returns userID's newest entries first, at most limit of them.
	Audit(ctx context.Context, userID string, limit int) ([]model.AuditEntry, error)

	SaveSession(ctx context.Context, s model.SchedulingSession) error
	// Session returns a stored session or ErrNotFound.
	Session(ctx context.Context, id string) (model.SchedulingSession, error)

	// Ready reports whether the store can serve requests.
	Ready(ctx context.Context) error
	Close()
}

// observe records the latency and outcome of a store operation.
func observe(op string, start time.Time, err error) {
	metrics.RecordStoreOperation(op, time.Since(start), err)
}

func auditLimit(limit int) int {
	if limit <= 0 {
		return DefaultAuditLimit
	}
	return limit
}

// Open returns the store for driver. dsn is used by the postgres driver only.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemory(opts...), nil
	case DriverPostgres:
		return Connect(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
