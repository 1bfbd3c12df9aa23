package calendar

import (
	"context"
	"time"

	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/pkg/metrics"
)

// Instrumented records the latency and outcome of every call to a provider.
type Instrumented struct {
	next Provider
}

// Instrument wraps p with metrics.
func Instrument(p Provider) *Instrumented {
	return &Instrumented{next: p}
}

func (i *Instrumented) Name() string { return i.next.Name() }

// Unwrap returns the wrapped provider.
func (i *Instrumented) Unwrap() Provider { return i.next }

func (i *Instrumented) List(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	start := time.Now()
	out, err := i.next.List(ctx, from, to)
	metrics.RecordCalendarRequest(i.next.Name(), "list", time.Since(start), err)
	return out, err
}

func (i *Instrumented) Create(ctx context.Context, plan model.EventPlan) (model.CalendarEvent, error) {
	start := time.Now()
	ev, err := i.next.Create(ctx, plan)
	metrics.RecordCalendarRequest(i.next.Name(), "create", time.Since(start), err)
	return ev, err
}

func (i *Instrumented) Update(ctx context.Context, id string, plan model.EventPlan) (model.CalendarEvent, error) {
	start := time.Now()
	ev, err := i.next.Update(ctx, id, plan)
	metrics.RecordCalendarRequest(i.next.Name(), "update", time.Since(start), err)
	return ev, err
}

func (i *Instrumented) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := i.next.Delete(ctx, id)
	metrics.RecordCalendarRequest(i.next.Name(), "delete", time.Since(start), err)
	return err
}
