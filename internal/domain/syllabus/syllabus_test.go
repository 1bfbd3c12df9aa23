package syllabus_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/syllabus"
	"github.com/okian/studyplan/internal/domain/temporal"
	. "github.com/smartystreets/goconvey/convey"
)

// saturday is 2025-10-18 10:00 UTC.
var saturday = time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)

// filler keeps context windows of neighbouring lines apart.
const filler = "Students should read the assigned chapters carefully and come prepared to discuss the material with their peers in section."

func newExtractor() *syllabus.Extractor {
	return syllabus.New(syllabus.WithParser(temporal.New(
		temporal.WithClock(func() time.Time { return saturday }),
		temporal.WithLocation(time.UTC),
	)))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var document = strings.Join([]string{
	"Midterm Exam on Oct 12, 2025 in the main hall.",
	filler,
	"Homework 3 due 10/20.",
	filler,
	"Quiz 2 on 11.05.2025.",
	filler,
	"Final Project presentation December 3rd.",
	filler,
	"Reading pages 10/12 of the textbook.",
	filler,
	"Take 2.5 hours for the lab.",
}, "\n")

func TestExtractEvents(t *testing.T) {
	e := newExtractor()

	Convey("Given a syllabus with several dated events", t, func() {
		events := e.ExtractEvents([]string{document}, 2025)

		So(len(events), ShouldEqual, 4)

		So(events[0].Title, ShouldEqual, "Midterm Exam")
		So(events[0].Type, ShouldEqual, model.TypeExam)
		So(events[0].Date, ShouldEqual, day(2025, time.October, 12))
		So(events[0].SourceText, ShouldEqual, "Oct 12, 2025")
		So(events[0].Confidence, ShouldEqual, 0.7)
		So(events[0].Description, ShouldEqual, "Midterm Exam on Oct 12, 2025 in the main hall")

		So(events[1].Type, ShouldEqual, model.TypeAssignment)
		So(events[1].Date, ShouldEqual, day(2025, time.October, 20))
		So(events[1].Title, ShouldEqual, "Assignment - 2025-10-20")
		So(events[1].Confidence, ShouldEqual, 0.5)

		So(events[2].Type, ShouldEqual, model.TypeQuiz)
		So(events[2].Title, ShouldEqual, "Quiz 2")
		So(events[2].Date, ShouldEqual, day(2025, time.November, 5))

		So(events[3].Type, ShouldEqual, model.TypeExam)
		So(events[3].Date, ShouldEqual, day(2025, time.December, 3))

		Convey("Results are sorted and carry stable IDs", func() {
			for i := 1; i < len(events); i++ {
				So(events[i-1].Date.After(events[i].Date), ShouldBeFalse)
			}
			for _, ev := range events {
				So(ev.ID, ShouldNotBeEmpty)
				So(ev.Confidence, ShouldBeBetweenOrEqual, 0, 0.95)
			}
		})

		Convey("Repeated runs are identical", func() {
			So(e.ExtractEvents([]string{document}, 2025), ShouldResemble, events)
		})

		Convey("Overlapping chunks do not duplicate events", func() {
			So(e.ExtractEvents([]string{document, document}, 2025), ShouldResemble, events)
		})
	})

	Convey("Given bare numeric dates", t, func() {
		Convey("Without year or keyword they are dropped", func() {
			So(e.ExtractEvents([]string{"See pages 10/12 and 3/4 of the reader."}, 0), ShouldBeEmpty)
		})

		Convey("A year keeps them", func() {
			events := e.ExtractEvents([]string{"Guest lecture 11/14/2025."}, 0)
			So(len(events), ShouldEqual, 1)
			So(events[0].Type, ShouldEqual, model.TypeOther)
			So(events[0].Title, ShouldEqual, "Other - 2025-11-14")
		})

		Convey("Decimals are not dates", func() {
			So(e.ExtractEvents([]string{"Exam weight is 2.5 percent, quiz 0.5"}, 0), ShouldBeEmpty)
		})
	})

	Convey("Given an ISO date", t, func() {
		events := e.ExtractEvents([]string{"Final exam: 2024-03-15 in room 4."}, 0)
		So(len(events), ShouldEqual, 1)
		So(events[0].Date, ShouldEqual, day(2024, time.March, 15))
		So(events[0].SourceText, ShouldEqual, "2024-03-15")
		So(events[0].Title, ShouldEqual, "Final Exam")
	})

	Convey("Given a quiz line next to an exam line", t, func() {
		events := e.ExtractEvents([]string{"Midterm Exam on Oct 30 in the main hall.\nQuiz 2 on 11.05.2025."}, 2025)
		So(len(events), ShouldEqual, 2)

		Convey("Then each title keeps the keyword it was read from", func() {
			So(events[0].Title, ShouldEqual, "Midterm Exam")
			So(events[1].Title, ShouldEqual, "Quiz 2")
			So(events[1].Type, ShouldEqual, model.TypeExam)
		})
	})

	Convey("Given overlapping matches from different families", t, func() {
		events := e.ExtractEvents([]string{"Midterm exam Oct 12/13"}, 2025)
		So(len(events), ShouldEqual, 1)
		So(events[0].Date, ShouldEqual, day(2025, time.October, 12))
		So(events[0].SourceText, ShouldEqual, "Oct 12")
	})

	Convey("Given context keywords", t, func() {
		typeOf := func(text string) model.EventType {
			events := e.ExtractEvents([]string{text}, 2025)
			So(len(events), ShouldEqual, 1)
			return events[0].Type
		}
		So(typeOf("Quiz on Nov 3"), ShouldEqual, model.TypeQuiz)
		So(typeOf("Project proposal due Nov 3"), ShouldEqual, model.TypeAssignment)
		So(typeOf("Project showcase Nov 3"), ShouldEqual, model.TypeProject)
		So(typeOf("Final exam and quiz review Nov 3"), ShouldEqual, model.TypeExam)
	})

	Convey("Given year-less dates", t, func() {
		events := e.ExtractEvents([]string{"Exam on Jan 15"}, 0)
		So(events[0].Date, ShouldEqual, day(2026, time.January, 15))

		events = e.ExtractEvents([]string{"Exam on Dec 5"}, 2025)
		So(events[0].Date, ShouldEqual, day(2025, time.December, 5))
	})
}

func TestAnalyze(t *testing.T) {
	Convey("Given a syllabus with a course header", t, func() {
		text := "Course: ee 201\r\nInstructor: Ada Lovelace\r\n\r\nSemester: Fall 2025\r\nMidterm Exam on Oct 12."
		analysis, chunks := newExtractor().Analyze(text)

		So(len(chunks), ShouldEqual, 1)
		So(analysis.CourseInfo, ShouldResemble, model.CourseInfo{Name: "EE 201", Instructor: "Ada Lovelace", Semester: "Fall 2025"})
		So(len(analysis.Events), ShouldEqual, 1)
		So(analysis.Events[0].Course, ShouldEqual, "EE 201")
		So(analysis.Events[0].Title, ShouldEqual, "Midterm Exam")
		So(analysis.Events[0].Date, ShouldEqual, day(2025, time.October, 12))
		So(analysis.Summary, ShouldEqual, "Extracted 1 events from syllabus")
	})
}

func TestNormalizeAndSplit(t *testing.T) {
	Convey("Given raw extracted text", t, func() {
		So(syllabus.Normalize("Line one\r\n\r\n\r\nhyphen-\nated   words\t\there "), ShouldEqual, "Line one\nhyphenated words here")
	})

	Convey("Given a long document", t, func() {
		var parts []string
		for i := 0; i < 200; i++ {
			parts = append(parts, fmt.Sprintf("Sentence %03d is here", i))
		}
		text := strings.Join(parts, ". ")
		chunks := syllabus.Split(text, 1000, 200)

		So(len(chunks), ShouldBeGreaterThan, 4)
		for i, c := range chunks {
			So(len([]rune(c)), ShouldBeLessThanOrEqualTo, 1000)
			if i > 0 {
				head := strings.SplitN(c, ". ", 2)[0]
				So(chunks[i-1], ShouldContainSubstring, head)
			}
		}
		So(chunks[0], ShouldStartWith, "Sentence 000")
		So(chunks[len(chunks)-1], ShouldEndWith, "Sentence 199 is here")
	})

	Convey("Given a short document", t, func() {
		So(syllabus.Split("one line", 1000, 200), ShouldResemble, []string{"one line"})
		So(syllabus.Split("   ", 1000, 200), ShouldBeEmpty)
	})
}

func TestCourseInfo(t *testing.T) {
	Convey("Given header lines", t, func() {
		info := syllabus.CourseInfo("Class: CS101 Prof: Grace Hopper Term: spring 2026")
		So(info.Name, ShouldEqual, "CS101")
		So(info.Instructor, ShouldEqual, "Grace Hopper")
		So(info.Semester, ShouldEqual, "spring 2026")
		So(syllabus.DefaultYear(info.Semester), ShouldEqual, 2026)
		So(syllabus.DefaultYear(""), ShouldEqual, 0)
		So(syllabus.CourseInfo("nothing here"), ShouldResemble, model.CourseInfo{})
	})
}

func TestSearch(t *testing.T) {
	events := []model.SyllabusEvent{
		{Title: "Midterm Exam", Type: model.TypeExam, Date: day(2025, time.October, 12)},
		{Title: "Quiz 2", Type: model.TypeQuiz, Date: day(2025, time.November, 5), Description: "covers recursion"},
		{Title: "Assignment - 2025-10-18", Type: model.TypeAssignment, Date: day(2025, time.October, 18)},
		{Title: "Final Exam", Type: model.TypeExam, Date: day(2025, time.December, 10)},
	}

	Convey("Given stored events", t, func() {
		Convey("Search matches title, description and type", func() {
			So(len(syllabus.Search(events, "exam")), ShouldEqual, 2)
			So(len(syllabus.Search(events, "RECURSION")), ShouldEqual, 1)
			So(len(syllabus.Search(events, "assignment")), ShouldEqual, 1)
			So(len(syllabus.Search(events, "")), ShouldEqual, 4)
		})

		Convey("Upcoming keeps today through the window", func() {
			got := syllabus.Upcoming(events, saturday, 30)
			So(len(got), ShouldEqual, 2)
			So(got[0].Title, ShouldEqual, "Assignment - 2025-10-18")
			So(got[1].Title, ShouldEqual, "Quiz 2")

			So(len(syllabus.Upcoming(events, saturday, 0)), ShouldEqual, 2)
			So(len(syllabus.Upcoming(events, saturday, 60)), ShouldEqual, 3)
		})
	})

	Convey("Given stored chunks", t, func() {
		chunks := []model.Chunk{
			{SyllabusID: "s1", Index: 0, Content: "Midterm exam review"},
			{SyllabusID: "s1", Index: 1, Content: "Homework policy"},
			{SyllabusID: "s1", Index: 2, Content: "exam exam logistics for the midterm"},
		}
		got := syllabus.SearchChunks(chunks, "midterm exam", 0)
		So(len(got), ShouldEqual, 2)
		So(got[0].ChunkIndex, ShouldEqual, 2)
		So(got[1].ChunkIndex, ShouldEqual, 0)
		So(syllabus.SearchChunks(chunks, "  ", 5), ShouldBeEmpty)
		So(len(syllabus.SearchChunks(chunks, "exam", 1)), ShouldEqual, 1)
	})
}
