package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/studyplan/internal/adapters/repository"
	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/pkg/logger"
	"github.com/okian/studyplan/pkg/metrics"
)

const directWriteTimeout = 5 * time.Second

// DefaultPreferences are returned for users that never saved any.
func DefaultPreferences(userID string) model.UserPreferences {
	return model.UserPreferences{
		UserID:               userID,
		WorkingHours:         model.ClockRange{Start: "09:00", End: "17:00"},
		BreakDuration:        15,
		TimeZone:             "UTC",
		DefaultEventDuration: 60,
	}
}

// audit records one operation. Entries go through the audit queue; when
// the queue is full or not running they are written to the store directly.
func (s *Service) audit(ctx context.Context, userID string, action model.AuditAction, start time.Time, details map[string]string, err error) {
	now := s.now()
	e := model.AuditEntry{
		ID:         s.newID(),
		UserID:     userID,
		Action:     action,
		Status:     model.StatusSuccess,
		Details:    details,
		DurationMs: now.Sub(start).Milliseconds(),
		CreatedAt:  now,
	}
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		e.Status = model.StatusCancelled
		e.Error = err.Error()
	default:
		e.Status = model.StatusFailed
		e.Error = err.Error()
	}

	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()
	if q != nil && q.Enqueue(ctx, e) {
		return
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), directWriteTimeout)
	defer cancel()
	if werr := s.store.AppendAudit(wctx, e); werr != nil {
		metrics.RecordErrorByComponent("service", "audit_write")
		s.logger.Error(ctx, "failed to write audit entry",
			logger.String("action", string(action)), logger.Error(werr))
	}
}

// Audit returns userID's newest audit entries first.
func (s *Service) Audit(ctx context.Context, userID string, limit int) ([]model.AuditEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	return s.store.Audit(ctx, userID, limit)
}

// Preferences returns userID's stored preferences, or the defaults.
func (s *Service) Preferences(ctx context.Context, userID string) (model.UserPreferences, error) {
	if userID == "" {
		return model.UserPreferences{}, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	prefs, err := s.store.Preferences(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return DefaultPreferences(userID), nil
	}
	return prefs, err
}

// SavePreferences validates and stores prefs.
func (s *Service) SavePreferences(ctx context.Context, prefs model.UserPreferences) (model.UserPreferences, error) {
	start := s.now()
	if err := validatePreferences(&prefs); err != nil {
		return model.UserPreferences{}, err
	}
	err := s.store.SavePreferences(ctx, prefs)
	s.audit(ctx, prefs.UserID, model.ActionUpdatePreferences, start, map[string]string{
		"avoidDays":     joinWeekdays(prefs.AvoidDays),
		"preferredDays": joinWeekdays(prefs.PreferredDays),
	}, err)
	if err != nil {
		return model.UserPreferences{}, fmt.Errorf("save preferences: %w", err)
	}
	return prefs, nil
}

// validatePreferences checks prefs and canonicalizes its weekdays.
func validatePreferences(p *model.UserPreferences) error {
	if p.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	for _, c := range []string{p.WorkingHours.Start, p.WorkingHours.End} {
		if c == "" {
			continue
		}
		if _, err := time.Parse("15:04", c); err != nil {
			return fmt.Errorf("%w: working hours %q must be HH:MM", ErrInvalidInput, c)
		}
	}
	if p.BreakDuration < 0 || p.DefaultEventDuration < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidInput)
	}
	if p.TimeZone != "" {
		if _, err := time.LoadLocation(p.TimeZone); err != nil {
			return fmt.Errorf("%w: unknown time zone %q", ErrInvalidInput, p.TimeZone)
		}
	}
	var err error
	if p.AvoidDays, err = canonicalDays(p.AvoidDays); err != nil {
		return err
	}
	if p.PreferredDays, err = canonicalDays(p.PreferredDays); err != nil {
		return err
	}
	return nil
}

func canonicalDays(days []model.Weekday) ([]model.Weekday, error) {
	out := make([]model.Weekday, 0, len(days))
	for _, d := range days {
		wd, ok := model.ParseWeekday(string(d))
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidInput, d)
		}
		if !model.ContainsWeekday(out, wd) {
			out = append(out, wd)
		}
	}
	return model.SortWeekdays(out), nil
}

func joinWeekdays(days []model.Weekday) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = string(d)
	}
	return strings.Join(names, ",")
}
