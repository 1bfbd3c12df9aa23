package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("Init succeeds for known formats", func() {
			So(Init(), ShouldBeNil)
			So(Get(), ShouldNotBeNil)
			So(Init(WithFormat("json")), ShouldBeNil)
			So(Sync(), ShouldBeNil)
		})

		Convey("Unknown formats are rejected", func() {
			So(Init(WithFormat("xml")), ShouldNotBeNil)
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("json"), WithOutput(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("Fields and the caller are written", func() {
			Named("planner").Info(ctx, "plans generated",
				Int("count", 2),
				Bool("fallback", true),
				Duration("took", time.Second),
				Error(errors.New("boom")),
			)

			var rec map[string]interface{}
			So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
			So(rec["msg"], ShouldEqual, "plans generated")
			So(rec["component"], ShouldEqual, "planner")
			So(rec["count"], ShouldEqual, float64(2))
			So(rec["fallback"], ShouldEqual, true)
			So(rec["error"], ShouldEqual, "boom")
			So(rec["source"], ShouldContainSubstring, "logger_test.go")
		})

		Convey("Levels filter output", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			So(buf.Len(), ShouldEqual, 0)
			Get().Warn(ctx, "shown")
			So(buf.String(), ShouldContainSubstring, "shown")
			SetLevel(slog.LevelInfo)
		})

		Convey("Unknown levels are rejected", func() {
			So(SetLevelString("loud"), ShouldNotBeNil)
		})
	})
}
