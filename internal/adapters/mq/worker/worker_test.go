package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/studyplan/internal/adapters/mq/queue"
	worker "github.com/okian/studyplan/internal/adapters/mq/worker"
	model "github.com/okian/studyplan/internal/domain/model"
	logging "github.com/okian/studyplan/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockWriter struct {
	mu      sync.Mutex
	entries []model.AuditEntry
	failIDs map[string]error
}

func newMockWriter() *mockWriter {
	return &mockWriter{failIDs: make(map[string]error)}
}

func (m *mockWriter) AppendAudit(_ context.Context, entries ...model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		if err, ok := m.failIDs[e.ID]; ok {
			return err
		}
		m.entries = append(m.entries, e)
	}
	return nil
}

func (m *mockWriter) fail(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failIDs[id] = err
}

func (m *mockWriter) ids() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.ID
	}
	return out
}

func entry(id string) model.AuditEntry {
	return model.AuditEntry{ID: id, UserID: "u1", Action: model.ActionCreateEvent, Status: model.StatusSuccess, CreatedAt: time.Now()}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker over a queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		writer := newMockWriter()
		w := worker.NewInMemoryWorker(q, writer, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When entries are enqueued", func() {
			q.Enqueue(ctx, entry("a1"))
			q.Enqueue(ctx, entry("a2"))

			convey.Convey("Then they are written in order", func() {
				convey.So(waitFor(func() bool { return len(writer.ids()) == 2 }), convey.ShouldBeTrue)
				convey.So(writer.ids(), convey.ShouldResemble, []string{"a1", "a2"})
			})
		})

		convey.Convey("When a write fails", func() {
			writer.fail("bad", errors.New("store down"))
			q.Enqueue(ctx, entry("bad"))
			q.Enqueue(ctx, entry("good"))

			convey.Convey("Then the worker keeps going", func() {
				convey.So(waitFor(func() bool { return len(writer.ids()) == 1 }), convey.ShouldBeTrue)
				convey.So(writer.ids(), convey.ShouldResemble, []string{"good"})
			})
		})

		convey.Convey("When shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of three workers", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		writer := newMockWriter()
		pool := worker.NewPool(3, q, writer)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		convey.Convey("When entries are queued before start and the pool shuts down", func() {
			for i := 0; i < 50; i++ {
				convey.So(q.Enqueue(ctx, entry(fmt.Sprint(i))), convey.ShouldBeTrue)
			}
			pool.Start(ctx)
			err := pool.Shutdown(context.Background())

			convey.Convey("Then every entry is written exactly once", func() {
				convey.So(err, convey.ShouldBeNil)
				ids := writer.ids()
				convey.So(len(ids), convey.ShouldEqual, 50)
				seen := make(map[string]bool, len(ids))
				for _, id := range ids {
					convey.So(seen[id], convey.ShouldBeFalse)
					seen[id] = true
				}
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool with no worker count", t, func() {
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), newMockWriter())
		convey.So(pool, convey.ShouldNotBeNil)
		convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
	})
}
