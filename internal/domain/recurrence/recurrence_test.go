package recurrence_test

import (
	"testing"
	"time"

	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/recurrence"
	. "github.com/smartystreets/goconvey/convey"
)

// tuesday is 2025-10-21 19:00 UTC.
var tuesday = time.Date(2025, 10, 21, 19, 0, 0, 0, time.UTC)

func TestBuild(t *testing.T) {
	Convey("Given a weekly rule on Tuesdays and Thursdays", t, func() {
		rule, err := recurrence.Weekly([]model.Weekday{model.Thursday, model.Tuesday}, tuesday)

		So(err, ShouldBeNil)
		So(rule.Frequency, ShouldEqual, model.Weekly)
		So(rule.Interval, ShouldEqual, 1)
		So(rule.DaysOfWeek, ShouldResemble, []model.Weekday{model.Tuesday, model.Thursday})
		So(rule.RRule, ShouldContainSubstring, "FREQ=WEEKLY")
		So(rule.RRule, ShouldContainSubstring, "BYDAY=TU,TH")
		So(recurrence.Line(rule), ShouldStartWith, "RRULE:FREQ=WEEKLY")

		Convey("It round-trips through Parse", func() {
			parsed, err := recurrence.Parse(recurrence.Line(rule))
			So(err, ShouldBeNil)
			So(parsed.Frequency, ShouldEqual, model.Weekly)
			So(parsed.DaysOfWeek, ShouldResemble, rule.DaysOfWeek)
		})
	})

	Convey("Given invalid rules", t, func() {
		_, err := recurrence.Build(model.RecurrenceRule{Frequency: "HOURLY"}, tuesday)
		So(err, ShouldWrap, recurrence.ErrInvalidRule)

		before := tuesday.AddDate(0, 0, -1)
		_, err = recurrence.Build(model.RecurrenceRule{Frequency: model.Daily, EndDate: &before}, tuesday)
		So(err, ShouldWrap, recurrence.ErrInvalidRule)

		_, err = recurrence.Parse("FREQ=SOMETIMES")
		So(err, ShouldWrap, recurrence.ErrInvalidRule)
	})
}

func TestBetween(t *testing.T) {
	Convey("Given a Tu/Th rule", t, func() {
		rule, _ := recurrence.Weekly([]model.Weekday{model.Tuesday, model.Thursday}, tuesday)

		Convey("Two weeks hold four occurrences at the same wall time", func() {
			starts, truncated, err := recurrence.Between(rule, tuesday, tuesday, tuesday.AddDate(0, 0, 13), 0)
			So(err, ShouldBeNil)
			So(truncated, ShouldBeFalse)
			So(len(starts), ShouldEqual, 4)
			for _, s := range starts {
				So(s.Hour(), ShouldEqual, 19)
				So(s.Weekday() == time.Tuesday || s.Weekday() == time.Thursday, ShouldBeTrue)
			}
		})

		Convey("The cap truncates", func() {
			starts, truncated, err := recurrence.Between(rule, tuesday, tuesday, tuesday.AddDate(1, 0, 0), 3)
			So(err, ShouldBeNil)
			So(truncated, ShouldBeTrue)
			So(len(starts), ShouldEqual, 3)
		})

		Convey("An inverted window is rejected", func() {
			_, _, err := recurrence.Between(rule, tuesday, tuesday, tuesday.Add(-time.Hour), 0)
			So(err, ShouldEqual, recurrence.ErrInvalidRange)
		})

		Convey("Occurrences keep the first span's duration", func() {
			first := model.TimeRange{Start: tuesday, End: tuesday.Add(2 * time.Hour)}
			spans, err := recurrence.Occurrences(rule, first, tuesday, tuesday.AddDate(0, 0, 6))
			So(err, ShouldBeNil)
			So(len(spans), ShouldEqual, 2)
			So(spans[1].Duration(), ShouldEqual, 2*time.Hour)
		})
	})

	Convey("A count limits the series", t, func() {
		rule, err := recurrence.Build(model.RecurrenceRule{Frequency: model.Daily, Count: 3}, tuesday)
		So(err, ShouldBeNil)
		starts, _, err := recurrence.Between(rule, tuesday, tuesday, tuesday.AddDate(0, 1, 0), 0)
		So(err, ShouldBeNil)
		So(len(starts), ShouldEqual, 3)
	})
}
