package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/studyplan/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Timezone, convey.ShouldEqual, "UTC")
			convey.So(cfg.LLMConfidenceThreshold, convey.ShouldEqual, 0.6)
			convey.So(cfg.CalendarProvider, convey.ShouldEqual, config.CalendarMemory)
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.AuditQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.ChunkSize, convey.ShouldEqual, 1000)
			convey.So(cfg.ChunkOverlap, convey.ShouldEqual, 200)
			convey.So(cfg.UpcomingDays, convey.ShouldEqual, 30)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then derived durations follow their fields", func() {
			convey.So(cfg.LLMTimeout(), convey.ShouldEqual, 8*time.Second)
			convey.So(cfg.AdjacencyWindow(), convey.ShouldEqual, 30*time.Minute)
			loc, err := cfg.Location()
			convey.So(err, convey.ShouldBeNil)
			convey.So(loc, convey.ShouldEqual, time.UTC)
		})

		convey.Convey("Then the LLM stays off without a key", func() {
			cfg.LLMEnabled = true
			convey.So(cfg.LLMActive(), convey.ShouldBeFalse)
			cfg.LLMAPIKey = "sk-test"
			convey.So(cfg.LLMActive(), convey.ShouldBeTrue)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with a single bad value", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"threshold above one", func(c *config.Config) { c.LLMConfidenceThreshold = 1.5 }},
			{"zero llm timeout", func(c *config.Config) { c.LLMTimeoutMS = 0 }},
			{"overlap over size", func(c *config.Config) { c.ChunkOverlap = c.ChunkSize }},
			{"unknown timezone", func(c *config.Config) { c.Timezone = "Mars/Olympus" }},
			{"unknown provider", func(c *config.Config) { c.CalendarProvider = "outlook" }},
			{"google without token", func(c *config.Config) { c.CalendarProvider = config.CalendarGoogle }},
			{"ics without url", func(c *config.Config) { c.CalendarProvider = config.CalendarICS }},
			{"unknown driver", func(c *config.Config) { c.StoreDriver = "sqlite" }},
			{"postgres without dsn", func(c *config.Config) { c.StoreDriver = config.StorePostgres }},
			{"negative adjacency", func(c *config.Config) { c.AdjacencyWindowMinutes = -1 }},
		}
		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" is rejected", func() {
				cfg := config.New()
				tc.mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then a fully specified google provider is accepted", func() {
			cfg := config.New()
			cfg.CalendarProvider = config.CalendarGoogle
			cfg.GoogleRefreshToken = "refresh"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
