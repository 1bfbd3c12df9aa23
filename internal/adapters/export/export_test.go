package export_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"

	"github.com/okian/studyplan/internal/adapters/export"
	"github.com/okian/studyplan/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var stamp = time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)

func events() []model.SyllabusEvent {
	return []model.SyllabusEvent{
		{
			ID:         "final",
			Title:      "Final Exam",
			Date:       time.Date(2025, 12, 12, 0, 0, 0, 0, time.UTC),
			Type:       model.TypeExam,
			Course:     "CS 101",
			Confidence: 0.9,
			SourceText: "Final Exam: December 12",
		},
		{
			ID:         "hw1",
			Title:      "Homework 1",
			Date:       time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
			Type:       model.TypeAssignment,
			Confidence: 0.8,
			SourceText: "Homework 1 due 9/15",
		},
	}
}

func TestSyllabusICS(t *testing.T) {
	e := export.New(export.WithClock(func() time.Time { return stamp }))

	Convey("Given two syllabus events", t, func() {
		f, err := e.Syllabus("ics", "CS 101", events())
		So(err, ShouldBeNil)
		So(f.Name, ShouldEqual, "cs-101-events.ics")
		So(f.ContentType, ShouldEqual, export.ContentTypeICS)

		Convey("Then the calendar holds all-day events in date order", func() {
			cal, err := ical.ParseCalendar(bytes.NewReader(f.Body))
			So(err, ShouldBeNil)
			evs := cal.Events()
			So(len(evs), ShouldEqual, 2)
			So(evs[0].GetProperty(ical.ComponentPropertyUniqueId).Value, ShouldEqual, "hw1@studyplan")
			So(evs[0].GetProperty(ical.ComponentPropertyDtStart).Value, ShouldEqual, "20250915")
			So(evs[0].GetProperty(ical.ComponentPropertyDtEnd).Value, ShouldEqual, "20250916")
			So(evs[1].GetProperty(ical.ComponentPropertySummary).Value, ShouldEqual, "Final Exam")
			So(evs[1].GetProperty(ical.ComponentPropertyCategories).Value, ShouldEqual, "EXAM")
			So(string(f.Body), ShouldContainSubstring, "X-WR-CALNAME:CS 101")
		})
	})

	Convey("Given no events", t, func() {
		_, err := e.Syllabus("ics", "", nil)
		So(errors.Is(err, export.ErrNoEvents), ShouldBeTrue)
	})

	Convey("Given an unknown format", t, func() {
		_, err := e.Syllabus("pdf", "", events())
		So(errors.Is(err, export.ErrUnknownFormat), ShouldBeTrue)
	})
}

func TestPlansICS(t *testing.T) {
	e := export.New(export.WithClock(func() time.Time { return stamp }))
	start := time.Date(2025, 10, 21, 19, 0, 0, 0, time.UTC)

	Convey("Given a weekly plan", t, func() {
		plans := []model.EventPlan{{
			ID:            "p1",
			Title:         "EE labs",
			StartDateTime: start,
			EndDateTime:   start.Add(2 * time.Hour),
			Attendees:     []string{"lab@uni.edu"},
			Recurrence: &model.RecurrenceRule{
				Frequency:  model.Weekly,
				Interval:   1,
				DaysOfWeek: []model.Weekday{model.Tuesday, model.Thursday},
			},
		}}
		body, err := e.PlansICS("Labs", plans)
		So(err, ShouldBeNil)

		cal, err := ical.ParseCalendar(bytes.NewReader(body))
		So(err, ShouldBeNil)
		ve := cal.Events()[0]
		got, err := ve.GetStartAt()
		So(err, ShouldBeNil)
		So(got.Equal(start), ShouldBeTrue)
		So(ve.GetProperty(ical.ComponentPropertyRrule).Value, ShouldContainSubstring, "BYDAY=TU,TH")
		So(ve.GetProperty(ical.ComponentPropertyAttendee).Value, ShouldEqual, "mailto:lab@uni.edu")
	})

	Convey("Given no plans", t, func() {
		_, err := e.PlansICS("", nil)
		So(errors.Is(err, export.ErrNoEvents), ShouldBeTrue)
	})
}

func TestSyllabusXLSX(t *testing.T) {
	e := export.New()

	Convey("Given two syllabus events", t, func() {
		f, err := e.Syllabus("XLSX", "", events())
		So(err, ShouldBeNil)
		So(f.Name, ShouldEqual, "syllabus-events.xlsx")
		So(f.ContentType, ShouldEqual, export.ContentTypeXLSX)

		book, err := excelize.OpenReader(bytes.NewReader(f.Body))
		So(err, ShouldBeNil)
		defer book.Close()

		Convey("Then the events sheet lists rows in date order", func() {
			So(book.GetSheetList(), ShouldResemble, []string{"Events", "Summary"})
			header, _ := book.GetCellValue("Events", "D2")
			So(header, ShouldEqual, "Title")
			first, _ := book.GetCellValue("Events", "A3")
			So(first, ShouldEqual, "2025-09-15")
			day, _ := book.GetCellValue("Events", "B3")
			So(day, ShouldEqual, "Mon")
			title, _ := book.GetCellValue("Events", "D4")
			So(title, ShouldEqual, "Final Exam")
			kind, _ := book.GetCellValue("Events", "C4")
			So(kind, ShouldEqual, "Exam")
		})

		Convey("Then the summary counts per type", func() {
			rows, err := book.GetRows("Summary")
			So(err, ShouldBeNil)
			So(rows, ShouldResemble, [][]string{
				{"Type", "Count"},
				{"Exam", "1"},
				{"Assignment", "1"},
				{"Total", "2"},
			})
		})
	})

	Convey("Given a course name with punctuation", t, func() {
		f, err := e.Syllabus("xlsx", "EE/201: Circuits", events())
		So(err, ShouldBeNil)
		So(strings.HasPrefix(f.Name, "ee201-circuits"), ShouldBeTrue)
	})
}
