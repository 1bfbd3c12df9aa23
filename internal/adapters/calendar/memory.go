package calendar

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/studyplan/internal/domain/model"
)

// Memory is an in-process calendar. It is the default provider and the one
// tests run against.
type Memory struct {
	mu     sync.RWMutex
	events map[string]model.CalendarEvent
	newID  func() string
}

// NewMemory creates an empty calendar seeded with events.
func NewMemory(seed ...model.CalendarEvent) *Memory {
	m := &Memory{
		events: make(map[string]model.CalendarEvent, len(seed)),
		newID:  uuid.NewString,
	}
	for _, ev := range seed {
		if ev.ID == "" {
			ev.ID = m.newID()
		}
		m.events[ev.ID] = ev
	}
	return m
}

func (m *Memory) Name() string { return ProviderMemory }

// List returns events overlapping [from, to], ordered by start.
func (m *Memory) List(_ context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]model.CalendarEvent, 0, len(m.events))
	for _, ev := range m.events {
		out = expandInto(out, ev, from, to)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.DateTime.Equal(out[j].Start.DateTime) {
			return out[i].Start.DateTime.Before(out[j].Start.DateTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) Create(_ context.Context, plan model.EventPlan) (model.CalendarEvent, error) {
	ev, err := FromPlan(m.newID(), plan, model.SourceGenerated)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	m.mu.Lock()
	m.events[ev.ID] = ev
	m.mu.Unlock()
	return ev, nil
}

func (m *Memory) Update(_ context.Context, id string, plan model.EventPlan) (model.CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.events[id]
	if !ok {
		return model.CalendarEvent{}, ErrNotFound
	}
	ev, err := FromPlan(id, plan, prev.Source)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	m.events[id] = ev
	return ev, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return ErrNotFound
	}
	delete(m.events, id)
	return nil
}

// Len returns the number of stored events.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}
