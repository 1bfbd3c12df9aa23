package temporal_test

import (
	"testing"
	"time"

	"github.com/okian/studyplan/internal/domain/temporal"
	. "github.com/smartystreets/goconvey/convey"
)

// saturday is 2025-10-18 10:00 UTC.
var saturday = time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)

func fixedParser() *temporal.Parser {
	return temporal.New(
		temporal.WithClock(func() time.Time { return saturday }),
		temporal.WithLocation(time.UTC),
	)
}

func TestParseTime(t *testing.T) {
	Convey("Given time tokens", t, func() {
		cases := map[string]temporal.Clock{
			"7pm":    {Hour: 19},
			"7:30pm": {Hour: 19, Minute: 30},
			"19:30":  {Hour: 19, Minute: 30},
			"7":      {Hour: 19},
			"2:30PM": {Hour: 14, Minute: 30},
			"12am":   {Hour: 0},
			"12pm":   {Hour: 12},
			"9":      {Hour: 9},
			"10 a.m": {Hour: 10},
			"0:30":   {Hour: 0, Minute: 30},
			"00:15":  {Hour: 0, Minute: 15},
		}

		for token, want := range cases {
			got, ok := temporal.ParseTime(token)
			So(ok, ShouldBeTrue)
			So(got, ShouldResemble, want)
			So(got.Hour, ShouldBeBetweenOrEqual, 0, 23)
			So(got.Minute, ShouldBeBetweenOrEqual, 0, 59)
		}
	})

	Convey("Given tokens that are not times", t, func() {
		for _, token := range []string{"", "tonight", "25:00", "13pm", "7:75"} {
			_, ok := temporal.ParseTime(token)
			So(ok, ShouldBeFalse)
		}
	})

	Convey("Given a minute-bearing token with a meridiem", t, func() {
		Convey("Then the H:MM meridiem matcher wins over bare H", func() {
			got, ok := temporal.ParseTime("around 8:15 am")
			So(ok, ShouldBeTrue)
			So(got.String(), ShouldEqual, "08:15")
		})
	})
}

func TestScanTimes(t *testing.T) {
	Convey("Given a request with a range", t, func() {
		spans := temporal.ScanTimes("Block 7–9pm Tu/Th for EE labs")

		Convey("Then the range is reported once with propagated meridiem", func() {
			So(len(spans), ShouldEqual, 1)
			So(spans[0].HasEnd, ShouldBeTrue)
			So(spans[0].Start.String(), ShouldEqual, "19:00")
			So(spans[0].End.String(), ShouldEqual, "21:00")
			So(spans[0].DurationMinutes(), ShouldEqual, 120)
		})
	})

	Convey("Given a range crossing noon", t, func() {
		spans := temporal.ScanTimes("office hours 11-1pm")
		So(len(spans), ShouldEqual, 1)
		So(spans[0].Start.String(), ShouldEqual, "11:00")
		So(spans[0].End.String(), ShouldEqual, "13:00")
	})

	Convey("Given a 24-hour range past midnight", t, func() {
		spans := temporal.ScanTimes("night shift 23:30-0:30")
		So(len(spans), ShouldEqual, 1)
		So(spans[0].Start.String(), ShouldEqual, "23:30")
		So(spans[0].End.String(), ShouldEqual, "00:30")
		So(spans[0].DurationMinutes(), ShouldEqual, 60)
	})

	Convey("Given single times in one sentence", t, func() {
		spans := temporal.ScanTimes("gym at 7 and review 2:30pm")

		Convey("Then both are found in text order", func() {
			So(len(spans), ShouldEqual, 2)
			So(spans[0].Start.String(), ShouldEqual, "19:00")
			So(spans[1].Start.String(), ShouldEqual, "14:30")
		})
	})

	Convey("Given dates and durations that look like times", t, func() {
		spans := temporal.ScanTimes("study 2 to 3 hours on 10/15")
		So(spans, ShouldBeEmpty)
	})
}

func TestParseDateLoose(t *testing.T) {
	p := fixedParser()

	Convey("Given month-name dates", t, func() {
		got, ok := p.ParseDateLoose("Oct 12, 2025", 0)
		So(ok, ShouldBeTrue)
		So(got, ShouldEqual, "2025-10-12")

		got, ok = p.ParseDateLoose("November 3rd", 0)
		So(ok, ShouldBeTrue)
		So(got, ShouldEndWith, "-11-03")

		got, ok = p.ParseDateLoose("Sept. 5, 26", 0)
		So(ok, ShouldBeTrue)
		So(got, ShouldEqual, "2026-09-05")
	})

	Convey("Given day-before-month dates", t, func() {
		got, ok := p.ParseDateLoose("15 Oct 2025", 0)
		So(ok, ShouldBeTrue)
		So(got, ShouldEqual, "2025-10-15")

		got, ok = p.ParseDateLoose("the 3rd of December", 0)
		So(ok, ShouldBeTrue)
		So(got, ShouldEqual, "2025-12-03")
	})

	Convey("Given numeric dates", t, func() {
		got, ok := p.ParseDateLoose("10/15/2025", 0)
		So(ok, ShouldBeTrue)
		So(got, ShouldEqual, "2025-10-15")

		got, ok = p.ParseDateLoose("10.15", 0)
		So(ok, ShouldBeTrue)
		So(got, ShouldEqual, "2025-10-15")

		Convey("Then a day that cannot be a month flips to day-first", func() {
			got, ok := p.ParseDateLoose("25/12/2025", 0)
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, "2025-12-25")
		})
	})

	Convey("Given year-first ISO dates", t, func() {
		got, ok := p.ParseDateLoose("Final exam: 2024-03-15 in room 4.", 0)
		So(ok, ShouldBeTrue)
		So(got, ShouldEqual, "2024-03-15")

		_, ok = p.ParseDateLoose("2025-02-30", 0)
		So(ok, ShouldBeFalse)
	})

	Convey("Given a bare numeric date without a year", t, func() {
		got, ok := p.ParseDateLoose("03/04", 0)

		Convey("Then it resolves month-first and rolls past dates forward", func() {
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, "2026-03-04")
		})

		Convey("And surrounding words do not prevent a match", func() {
			_, ok := p.ParseDateLoose("Exam on 03/04", 0)
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given year inference", t, func() {
		Convey("When the date is recent it stays in the current year", func() {
			got, _ := p.ParseDateLoose("Sep 1", 0)
			So(got, ShouldEqual, "2025-09-01")
		})

		Convey("When the date is more than six months back it rolls forward", func() {
			got, _ := p.ParseDateLoose("Jan 15", 0)
			So(got, ShouldEqual, "2026-01-15")
		})

		Convey("When the rolled date does not exist the original year is kept", func() {
			got, ok := p.ParseDateLoose("Feb 29", 2024)
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, "2024-02-29")
		})

		Convey("When a default year is supplied it is used", func() {
			got, _ := p.ParseDateLoose("Jan 15", 2026)
			So(got, ShouldEqual, "2026-01-15")
			got, _ = p.ParseDateLoose("Dec 5", 2025)
			So(got, ShouldEqual, "2025-12-05")
		})
	})

	Convey("Given text without a valid date", t, func() {
		for _, text := range []string{"no date here", "02/30/2025", "13/13", "Smarch 4"} {
			_, ok := p.ParseDateLoose(text, 0)
			So(ok, ShouldBeFalse)
		}
	})
}

func TestNextWeekday(t *testing.T) {
	Convey("Given a Saturday", t, func() {
		Convey("Then the next Saturday is a week away, never today", func() {
			next := temporal.NextWeekday(saturday, time.Saturday)
			So(next.Sub(saturday), ShouldEqual, 7*24*time.Hour)
		})

		Convey("Then the next Tuesday is three days away", func() {
			next := temporal.NextWeekday(saturday, time.Tuesday)
			So(next.Weekday(), ShouldEqual, time.Tuesday)
			So(next.Day(), ShouldEqual, 21)
		})
	})

	Convey("Given a parser", t, func() {
		p := fixedParser()
		at := p.At(saturday, temporal.Clock{Hour: 19, Minute: 30})
		So(at, ShouldEqual, time.Date(2025, 10, 18, 19, 30, 0, 0, time.UTC))
	})
}
