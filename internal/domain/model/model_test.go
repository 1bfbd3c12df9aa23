package model_test

import (
	"testing"
	"time"

	"github.com/okian/studyplan/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWeekday(t *testing.T) {
	Convey("Given canonical weekday names", t, func() {
		Convey("When parsing mixed case names", func() {
			d, ok := model.ParseWeekday(" tuesday ")

			Convey("Then they normalize to upper case", func() {
				So(ok, ShouldBeTrue)
				So(d, ShouldEqual, model.Tuesday)
				So(d.Short(), ShouldEqual, "TU")
				So(d.Title(), ShouldEqual, "Tuesday")
			})
		})

		Convey("When parsing an abbreviation", func() {
			_, ok := model.ParseWeekday("tue")

			Convey("Then it is rejected", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When converting from time.Weekday", func() {
			So(model.WeekdayOf(time.Friday), ShouldEqual, model.Friday)
			std, ok := model.Sunday.Std()
			So(ok, ShouldBeTrue)
			So(std, ShouldEqual, time.Sunday)
		})

		Convey("When sorting a messy list", func() {
			out := model.SortWeekdays([]model.Weekday{model.Sunday, model.Monday, "NOPE", model.Sunday})

			Convey("Then it is ordered Monday first without duplicates", func() {
				So(out, ShouldResemble, []model.Weekday{model.Monday, model.Sunday})
			})
		})
	})
}

func TestConstraintsAndRanges(t *testing.T) {
	Convey("Given constraints avoiding Friday", t, func() {
		c := model.Constraints{AvoidDays: []model.Weekday{model.Friday}}
		fri := time.Date(2025, 10, 17, 19, 0, 0, 0, time.UTC)

		So(c.Avoids(fri), ShouldBeTrue)
		So(c.Avoids(fri.AddDate(0, 0, 1)), ShouldBeFalse)
	})

	Convey("Given two time ranges", t, func() {
		base := time.Date(2025, 10, 14, 19, 0, 0, 0, time.UTC)
		a := model.TimeRange{Start: base, End: base.Add(2 * time.Hour)}

		Convey("Then touching ranges do not overlap", func() {
			b := model.TimeRange{Start: a.End, End: a.End.Add(time.Hour)}
			So(a.Overlaps(b), ShouldBeFalse)
		})

		Convey("Then nested ranges overlap", func() {
			b := model.TimeRange{Start: base.Add(30 * time.Minute), End: base.Add(time.Hour)}
			So(a.Overlaps(b), ShouldBeTrue)
			So(a.Duration(), ShouldEqual, 2*time.Hour)
		})
	})

	Convey("Given event types and session statuses", t, func() {
		So(model.TypeExam.Title(), ShouldEqual, "Exam")
		So(model.SessionCompleted.Terminal(), ShouldBeTrue)
		So(model.SessionPlanning.Terminal(), ShouldBeFalse)
	})
}
