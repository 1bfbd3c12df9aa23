package service_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	service "github.com/okian/studyplan/internal/app"
	"github.com/okian/studyplan/internal/adapters/repository"
	"github.com/okian/studyplan/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service", t, func() {
		store := repository.NewMemory()
		defer store.Close()
		svc := newService(
			service.WithStore(store),
			service.WithWorkerCount(2),
			service.WithQueueSize(1000),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		user := uuid.NewString()

		Convey("When a student goes through the whole flow", func() {
			res, err := svc.Analyze(ctx, model.SchedulingRequest{
				UserID:               user,
				NaturalLanguageInput: "Block 7-9pm Tu/Th for EE labs; avoid Fridays",
			})
			So(err, ShouldBeNil)

			check, err := svc.CheckConflicts(ctx, user, res.Plans[0], nil)
			So(err, ShouldBeNil)
			So(check.Conflicts, ShouldBeEmpty)

			_, err = svc.CreateEvent(ctx, user, res.Plans[0])
			So(err, ShouldBeNil)

			_, err = svc.UpdateSession(ctx, res.SessionID, model.SessionCompleted)
			So(err, ShouldBeNil)

			analysis, err := svc.ProcessSyllabus(ctx, user, "ee201.txt", syllabusText)
			So(err, ShouldBeNil)
			_, err = svc.ImportEvents(ctx, user, []string{analysis.Events[1].ID})
			So(err, ShouldBeNil)

			svc.Stop()

			Convey("Then every step is in the audit log once the queue drains", func() {
				entries, err := store.Audit(context.Background(), user, 0)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 5)
				got := actions(entries)
				for _, want := range []model.AuditAction{
					model.ActionAnalyzeRequest,
					model.ActionCheckConflicts,
					model.ActionCreateEvent,
					model.ActionUploadSyllabus,
					model.ActionImportEvents,
				} {
					So(got, ShouldContain, want)
				}
			})

			Convey("Then the session holds its final status", func() {
				s, err := store.Session(context.Background(), res.SessionID)
				So(err, ShouldBeNil)
				So(s.Status, ShouldEqual, model.SessionCompleted)
			})
		})

		Convey("When the service is stopped before use", func() {
			svc.Stop()
			_, err := svc.Analyze(ctx, model.SchedulingRequest{UserID: user, NaturalLanguageInput: "Study tomorrow at 7"})
			So(err, ShouldBeNil)

			Convey("Then audit entries are written directly", func() {
				entries, err := store.Audit(ctx, user, 0)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
			})
		})
	})
}

func TestServiceConcurrency(t *testing.T) {
	Convey("Given a started service", t, func() {
		store := repository.NewMemory()
		defer store.Close()
		svc := newService(service.WithStore(store), service.WithWorkerCount(4), service.WithQueueSize(16))

		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When many users analyze requests at once", func() {
			const users = 20
			const perUser = 10
			ids := make([]string, users)
			for i := range ids {
				ids[i] = uuid.NewString()
			}

			var wg sync.WaitGroup
			errs := make(chan error, users*perUser)
			for _, id := range ids {
				wg.Add(1)
				go func(user string) {
					defer wg.Done()
					for j := 0; j < perUser; j++ {
						_, err := svc.Analyze(ctx, model.SchedulingRequest{
							UserID:               user,
							NaturalLanguageInput: fmt.Sprintf("Study %d at 7pm on Monday", j),
						})
						if err != nil {
							errs <- err
						}
					}
				}(id)
			}
			wg.Wait()
			close(errs)
			svc.Stop()

			Convey("Then no request fails and no audit entry is lost", func() {
				So(len(errs), ShouldEqual, 0)
				for _, id := range ids {
					entries, err := store.Audit(ctx, id, 0)
					So(err, ShouldBeNil)
					So(len(entries), ShouldEqual, perUser)
				}
			})
		})
	})
}

func TestServicePostgres(t *testing.T) {
	dsn := os.Getenv("STUDYPLAN_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("STUDYPLAN_TEST_DATABASE_DSN not set")
	}

	Convey("Given a service on postgres", t, func() {
		ctx := context.Background()
		store, err := repository.Open(ctx, repository.DriverPostgres, dsn)
		So(err, ShouldBeNil)
		defer store.Close()

		svc := newService(service.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)
		user := uuid.NewString()

		analysis, err := svc.ProcessSyllabus(ctx, user, "ee201.txt", syllabusText)
		So(err, ShouldBeNil)
		svc.Stop()

		Convey("Then the syllabus and its audit entry are persisted", func() {
			events, _, err := svc.UpcomingEvents(ctx, user, 0)
			So(err, ShouldBeNil)
			So(len(events), ShouldEqual, 2)
			So(events[0].ID, ShouldEqual, analysis.Events[0].ID)

			entries, err := store.Audit(ctx, user, 0)
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 1)
		})
	})
}
