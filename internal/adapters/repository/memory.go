package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/studyplan/internal/domain/model"
)

// defaultAuditCapacity bounds the in-memory audit log.
const defaultAuditCapacity = 10_000

type storedPlan struct {
	userID string
	plan   model.EventPlan
}

type storedSyllabus struct {
	doc    model.Syllabus
	chunks []model.Chunk
	events []model.SyllabusEvent
	seq    int
}

// Memory is an in-process Store. All methods are safe for concurrent use.
type Memory struct {
	mu            sync.RWMutex
	plans         map[string]storedPlan
	syllabi       map[string]*storedSyllabus
	seq           int
	prefs         map[string]model.UserPreferences
	audit         []model.AuditEntry
	auditIDs      map[string]struct{}
	auditCapacity int
	sessions      map[string]model.SchedulingSession
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty store.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		plans:         make(map[string]storedPlan),
		syllabi:       make(map[string]*storedSyllabus),
		prefs:         make(map[string]model.UserPreferences),
		auditIDs:      make(map[string]struct{}),
		auditCapacity: defaultAuditCapacity,
		sessions:      make(map[string]model.SchedulingSession),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) SavePlans(_ context.Context, userID string, plans []model.EventPlan) (err error) {
	start := time.Now()
	defer func() { observe("save_plans", start, err) }()
	for _, p := range plans {
		if p.ID == "" {
			return fmt.Errorf("%w: plan without id", ErrInvalidRecord)
		}
	}
	m.mu.Lock()
	for _, p := range plans {
		m.plans[p.ID] = storedPlan{userID: userID, plan: p}
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Plan(_ context.Context, id string) (model.EventPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sp, ok := m.plans[id]
	if !ok {
		return model.EventPlan{}, ErrNotFound
	}
	return sp.plan, nil
}

func (m *Memory) SaveSyllabus(_ context.Context, doc model.Syllabus, chunks []model.Chunk, events []model.SyllabusEvent) (err error) {
	start := time.Now()
	defer func() { observe("save_syllabus", start, err) }()
	if doc.ID == "" || doc.UserID == "" {
		return fmt.Errorf("%w: syllabus needs id and user", ErrInvalidRecord)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := m.seq
	if prev, ok := m.syllabi[doc.ID]; ok {
		seq = prev.seq
	} else {
		m.seq++
	}
	m.syllabi[doc.ID] = &storedSyllabus{
		doc:    doc,
		chunks: append([]model.Chunk(nil), chunks...),
		events: append([]model.SyllabusEvent(nil), events...),
		seq:    seq,
	}
	return nil
}

func (m *Memory) Syllabus(_ context.Context, id string) (model.Syllabus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.syllabi[id]
	if !ok {
		return model.Syllabus{}, ErrNotFound
	}
	return s.doc, nil
}

// userSyllabi returns userID's documents in upload order. Callers hold mu.
func (m *Memory) userSyllabi(userID string) []*storedSyllabus {
	var out []*storedSyllabus
	for _, s := range m.syllabi {
		if s.doc.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (m *Memory) SyllabusEvents(_ context.Context, userID string) ([]model.SyllabusEvent, error) {
	m.mu.RLock()
	var out []model.SyllabusEvent
	for _, s := range m.userSyllabi(userID) {
		out = append(out, s.events...)
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) Chunks(_ context.Context, userID string) ([]model.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Chunk
	for _, s := range m.userSyllabi(userID) {
		out = append(out, s.chunks...)
	}
	return out, nil
}

func (m *Memory) Preferences(_ context.Context, userID string) (model.UserPreferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prefs[userID]
	if !ok {
		return model.UserPreferences{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) SavePreferences(_ context.Context, prefs model.UserPreferences) error {
	if strings.TrimSpace(prefs.UserID) == "" {
		return fmt.Errorf("%w: preferences without user", ErrInvalidRecord)
	}
	m.mu.Lock()
	m.prefs[prefs.UserID] = prefs
	m.mu.Unlock()
	return nil
}

func (m *Memory) AppendAudit(_ context.Context, entries ...model.AuditEntry) (err error) {
	start := time.Now()
	defer func() { observe("append_audit", start, err) }()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("%w: audit entry without id", ErrInvalidRecord)
		}
		if _, dup := m.auditIDs[e.ID]; dup {
			continue
		}
		m.auditIDs[e.ID] = struct{}{}
		m.audit = append(m.audit, e)
	}
	if over := len(m.audit) - m.auditCapacity; over > 0 {
		for _, e := range m.audit[:over] {
			delete(m.auditIDs, e.ID)
		}
		m.audit = append(m.audit[:0:0], m.audit[over:]...)
	}
	return nil
}

func (m *Memory) Audit(_ context.Context, userID string, limit int) ([]model.AuditEntry, error) {
	limit = auditLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.AuditEntry, 0, limit)
	for i := len(m.audit) - 1; i >= 0 && len(out) < limit; i-- {
		if m.audit[i].UserID == userID {
			out = append(out, m.audit[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) SaveSession(_ context.Context, s model.SchedulingSession) error {
	if s.ID == "" {
		return fmt.Errorf("%w: session without id", ErrInvalidRecord)
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return nil
}

func (m *Memory) Session(_ context.Context, id string) (model.SchedulingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return model.SchedulingSession{}, ErrNotFound
	}
	return s, nil
}

func (m *Memory) Ready(context.Context) error { return nil }

func (m *Memory) Close() {}
