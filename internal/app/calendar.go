package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/planner"
)

// CreateEvent writes plan to the calendar.
func (s *Service) CreateEvent(ctx context.Context, userID string, plan model.EventPlan) (model.CalendarEvent, error) {
	start := s.now()
	if issues := planner.Validate(plan); len(issues) > 0 {
		return model.CalendarEvent{}, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(issues, "; "))
	}
	ev, err := s.calendar.Create(ctx, plan)
	s.audit(ctx, userID, model.ActionCreateEvent, start, map[string]string{
		"planId":  plan.ID,
		"eventId": ev.ID,
		"title":   plan.Title,
	}, err)
	if err != nil {
		return model.CalendarEvent{}, fmt.Errorf("create event: %w", err)
	}
	return ev, nil
}

// UpdateEvent replaces the calendar event id with plan.
func (s *Service) UpdateEvent(ctx context.Context, userID, id string, plan model.EventPlan) (model.CalendarEvent, error) {
	start := s.now()
	if id == "" {
		return model.CalendarEvent{}, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}
	if issues := planner.Validate(plan); len(issues) > 0 {
		return model.CalendarEvent{}, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(issues, "; "))
	}
	ev, err := s.calendar.Update(ctx, id, plan)
	s.audit(ctx, userID, model.ActionUpdateEvent, start, map[string]string{
		"eventId": id,
		"title":   plan.Title,
	}, err)
	if err != nil {
		return model.CalendarEvent{}, fmt.Errorf("update event %s: %w", id, err)
	}
	return ev, nil
}

// DeleteEvent removes the calendar event id.
func (s *Service) DeleteEvent(ctx context.Context, userID, id string) error {
	start := s.now()
	if id == "" {
		return fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}
	err := s.calendar.Delete(ctx, id)
	s.audit(ctx, userID, model.ActionDeleteEvent, start, map[string]string{"eventId": id}, err)
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return nil
}

// ListEvents returns the calendar's event instances inside [from, to].
func (s *Service) ListEvents(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	events, err := s.calendar.List(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
