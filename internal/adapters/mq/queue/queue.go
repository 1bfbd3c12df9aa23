// Package queue buffers audit entries between request handlers and the
// workers that persist them.
//
// Enqueue never blocks: a full or closed queue rejects the entry and the
// caller decides what to do with it.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/pkg/metrics"
)

// DefaultCapacity bounds the queue when no capacity is configured.
const DefaultCapacity = 1024

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an entry. It returns false when the queue is full,
	// closed, or ctx is done.
	Enqueue(ctx context.Context, e model.AuditEntry) bool

	// Dequeue returns a channel receiving entries as they become available.
	// The channel is closed once the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan model.AuditEntry

	// Len returns the number of waiting entries.
	Len() int

	// Close stops accepting entries. Waiting entries are still delivered.
	Close() error

	IsClosed() bool
}

type item struct {
	entry model.AuditEntry
	at    time.Time
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	items    chan item
	capacity int

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan item, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, e model.AuditEntry) bool { //nolint:gocritic // entries travel by value
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	}

	select {
	case q.items <- item{entry: e, at: time.Now()}:
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return true
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan model.AuditEntry {
	out := make(chan model.AuditEntry)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case it, ok := <-q.items:
				if !ok {
					return
				}
				select {
				case out <- it.entry:
					metrics.RecordQueueDequeue()
					metrics.RecordQueueProcessingLatency(time.Since(it.at))
					q.updateGauges()
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (q *InMemoryQueue) Len() int {
	q.updateGauges()
	return len(q.items)
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.items)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
