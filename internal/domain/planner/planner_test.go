package planner_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/planner"
	"github.com/okian/studyplan/internal/domain/temporal"
	"github.com/okian/studyplan/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// saturday is 2025-10-18 10:00 UTC.
var saturday = time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC)

func newPlanner() *planner.Planner {
	return planner.New(planner.WithParser(temporal.New(
		temporal.WithClock(func() time.Time { return saturday }),
		temporal.WithLocation(time.UTC),
	)))
}

func request(text string) model.SchedulingRequest {
	return model.SchedulingRequest{UserID: "u1", NaturalLanguageInput: text}
}

func TestCreatePlans(t *testing.T) {
	ctx := context.Background()
	p := newPlanner()

	Convey("Given a Tu/Th lab block that avoids Fridays", t, func() {
		plans := p.CreatePlans(ctx, request("Block 7–9pm Tu/Th for EE labs; avoid Fridays"))

		So(len(plans), ShouldEqual, 2)
		So(plans[0].Title, ShouldContainSubstring, "EE")
		So(plans[0].StartDateTime, ShouldEqual, time.Date(2025, 10, 21, 19, 0, 0, 0, time.UTC))
		So(plans[1].StartDateTime.Weekday(), ShouldEqual, time.Thursday)
		for _, plan := range plans {
			So(plan.EndDateTime.Sub(plan.StartDateTime), ShouldEqual, 2*time.Hour)
			So(plan.StartDateTime.Weekday(), ShouldNotEqual, time.Friday)
			So(plan.Confidence, ShouldEqual, 0.95)
			So(plan.Explanation, ShouldContainSubstring, "Time slot: 19:00 - 21:00")
			So(plan.Explanation, ShouldContainSubstring, "Avoided: FRIDAY")
			So(plan.Recurrence, ShouldNotBeNil)
			So(plan.Recurrence.RRule, ShouldContainSubstring, "BYDAY=TU,TH")
			So(plan.ID, ShouldNotBeEmpty)
		}
		So(plans[0].ID, ShouldNotEqual, plans[1].ID)
	})

	Convey("Given a time without a day", t, func() {
		plans := p.CreatePlans(ctx, request("Study tomorrow at 7"))

		So(len(plans), ShouldEqual, 1)
		So(plans[0].Title, ShouldEqual, "Study")
		So(plans[0].StartDateTime, ShouldEqual, time.Date(2025, 10, 19, 19, 0, 0, 0, time.UTC))
		So(plans[0].EndDateTime.Sub(plans[0].StartDateTime), ShouldBeGreaterThanOrEqualTo, time.Hour)
		So(plans[0].Recurrence, ShouldBeNil)
	})

	Convey("Given no usable signal", t, func() {
		plans := p.CreatePlans(ctx, request("hello"))

		So(len(plans), ShouldEqual, 1)
		So(plans[0].StartDateTime, ShouldEqual, time.Date(2025, 10, 19, 19, 0, 0, 0, time.UTC))
		So(plans[0].EndDateTime, ShouldEqual, time.Date(2025, 10, 19, 21, 0, 0, 0, time.UTC))
		So(plans[0].Confidence, ShouldEqual, 0.7)
		So(plans[0].Explanation, ShouldStartWith, `Scheduled based on your request: "hello"`)
	})

	Convey("Given days without a time", t, func() {
		plans := p.CreatePlans(ctx, request("Reading on weekends"))

		So(len(plans), ShouldEqual, 2)
		So(plans[0].StartDateTime, ShouldEqual, time.Date(2025, 10, 25, 19, 0, 0, 0, time.UTC))
		So(plans[1].StartDateTime, ShouldEqual, time.Date(2025, 10, 19, 19, 0, 0, 0, time.UTC))
	})

	Convey("Given avoid-day filtering", t, func() {
		Convey("No plan lands on the avoided day", func() {
			for _, plan := range p.CreatePlans(ctx, request("study 7-8pm, avoid Friday")) {
				So(plan.StartDateTime.Weekday(), ShouldNotEqual, time.Friday)
				So(plan.EndDateTime.Sub(plan.StartDateTime), ShouldEqual, time.Hour)
			}
		})

		Convey("A fully filtered request rolls forward", func() {
			plans := p.CreatePlans(ctx, request("study Friday 7-8pm, avoid Friday"))
			So(len(plans), ShouldEqual, 1)
			So(plans[0].StartDateTime, ShouldEqual, time.Date(2025, 10, 25, 19, 0, 0, 0, time.UTC))
			So(plans[0].Explanation, ShouldContainSubstring, "Moved to the next day")
		})

		Convey("Avoiding every day keeps the default slot", func() {
			plans := p.CreatePlans(ctx, request("Nap, avoid weekdays and weekends"))
			So(len(plans), ShouldEqual, 1)
			So(plans[0].StartDateTime, ShouldEqual, time.Date(2025, 10, 19, 19, 0, 0, 0, time.UTC))
			So(plans[0].Explanation, ShouldContainSubstring, "Every day is avoided")
		})

		Convey("Preference avoid days apply too", func() {
			req := request("Study at 7")
			req.Context = &model.RequestContext{UserPreferences: &model.UserPreferences{
				AvoidDays: []model.Weekday{model.Sunday},
			}}
			plans := p.CreatePlans(ctx, req)
			So(len(plans), ShouldEqual, 1)
			So(plans[0].StartDateTime.Weekday(), ShouldEqual, time.Monday)
		})
	})

	Convey("Every plan keeps its invariants", t, func() {
		inputs := []string{
			"Block 7–9pm Tu/Th for EE labs; avoid Fridays",
			"Gym MWF at 6am for 1.5 hours",
			"Office hours 11-1pm weekdays",
			"Meet ana@uni.edu in Library Room 204 on Monday at 3pm",
			"late night session at 11pm for 3 hours",
			"",
		}
		for _, in := range inputs {
			plans := p.CreatePlans(ctx, request(in))
			So(plans, ShouldNotBeEmpty)
			for _, plan := range plans {
				So(plan.StartDateTime.Before(plan.EndDateTime), ShouldBeTrue)
				So(plan.Confidence, ShouldBeBetweenOrEqual, 0, 0.95)
				So(plan.Title, ShouldNotBeEmpty)
				So(plan.StartDateTime.After(saturday), ShouldBeTrue)
			}
		}
	})

	Convey("Long requests get a description", t, func() {
		in := "Schedule a long review session for the algorithms final at 7pm on Monday"
		plans := p.CreatePlans(ctx, request(in))
		So(plans[0].Description, ShouldEqual, `Auto-generated from: "`+in+`"`)
		So(plans[0].Location, ShouldEqual, "")
	})
}

func TestFromDraft(t *testing.T) {
	ctx := context.Background()
	p := newPlanner()

	Convey("Given an externally extracted draft", t, func() {
		d := planner.Draft{
			Input:      "EE lab on Tuesdays at 7pm",
			Title:      "EE Lab",
			Times:      []temporal.Clock{{Hour: 19}},
			TimeLabels: []string{"7pm"},
			Days:       []model.Weekday{model.Tuesday},
			Frequency:  model.Weekly,
			Recurring:  true,
			Source:     planner.SourceEnhanced,
		}
		plans := p.FromDraft(ctx, d)

		So(len(plans), ShouldEqual, 1)
		So(plans[0].Confidence, ShouldEqual, 0.85)
		So(plans[0].Explanation, ShouldEqual,
			`Scheduled "EE Lab" based on your request on TUESDAY at your preferred time of 7pm (19:00 - 21:00).`)
		So(plans[0].Description, ShouldStartWith, "Generated from:")
		So(plans[0].Recurrence.Frequency, ShouldEqual, model.Weekly)
	})

	Convey("Duration bounds clamp the slot", t, func() {
		plans := p.FromDraft(ctx, planner.Draft{
			Duration:    300,
			Constraints: model.Constraints{MaxDuration: 90},
		})
		So(plans[0].Title, ShouldEqual, "Untitled Event")
		So(plans[0].EndDateTime.Sub(plans[0].StartDateTime), ShouldEqual, 90*time.Minute)

		plans = p.FromDraft(ctx, planner.Draft{
			Duration:    30,
			Constraints: model.Constraints{MinDuration: 45},
		})
		So(plans[0].EndDateTime.Sub(plans[0].StartDateTime), ShouldEqual, 45*time.Minute)
	})
}

func TestConfidence(t *testing.T) {
	Convey("Given requests with different signals", t, func() {
		So(planner.Confidence("hello"), ShouldEqual, 0.7)
		So(planner.Confidence("study at 7pm"), ShouldEqual, 0.9)
		So(planner.Confidence("Tutoring Tuesdays 4-5pm"), ShouldEqual, 0.9)
		So(planner.Confidence("Block 7–9pm Tu/Th"), ShouldEqual, 0.95)
		So(planner.Confidence("the theory class"), ShouldEqual, 0.7)
	})
}

func TestValidate(t *testing.T) {
	Convey("Given edited plans", t, func() {
		start := saturday.Add(time.Hour)

		So(planner.Validate(model.EventPlan{Title: "x", StartDateTime: start, EndDateTime: start.Add(time.Hour)}), ShouldBeEmpty)
		So(planner.Validate(model.EventPlan{}), ShouldResemble, []string{
			planner.IssueMissingTitle, planner.IssueMissingStart, planner.IssueMissingEnd,
		})
		So(planner.Validate(model.EventPlan{Title: "x", StartDateTime: start, EndDateTime: start}),
			ShouldResemble, []string{planner.IssueEndBeforeStart})
	})
}
