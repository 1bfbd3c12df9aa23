package config_test

import (
	"errors"
	"context"
	"os"
	"testing"

	"github.com/okian/studyplan/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.AuditWorkerCount, convey.ShouldEqual, 2)
				convey.So(cfg.LLMEnabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("STUDYPLAN_ADDR", ":8080")
			_ = os.Setenv("STUDYPLAN_TIMEZONE", "America/New_York")
			_ = os.Setenv("STUDYPLAN_LLM_ENABLED", "true")
			_ = os.Setenv("STUDYPLAN_LLM_API_KEY", "sk-env")
			_ = os.Setenv("STUDYPLAN_LLM_CONFIDENCE_THRESHOLD", "0.75")
			_ = os.Setenv("STUDYPLAN_AUDIT_QUEUE_SIZE", "64")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Timezone, convey.ShouldEqual, "America/New_York")
				convey.So(cfg.LLMActive(), convey.ShouldBeTrue)
				convey.So(cfg.LLMConfidenceThreshold, convey.ShouldEqual, 0.75)
				convey.So(cfg.AuditQueueSize, convey.ShouldEqual, 64)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
calendar_provider: ics
ics_url: "https://example.edu/cal.ics"
ics_refresh_cron: "@every 10m"
chunk_size: 500
chunk_overlap: 50
upcoming_days: 14
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("STUDYPLAN_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.CalendarProvider, convey.ShouldEqual, config.CalendarICS)
				convey.So(cfg.ICSURL, convey.ShouldEqual, "https://example.edu/cal.ics")
				convey.So(cfg.ICSRefreshCron, convey.ShouldEqual, "@every 10m")
				convey.So(cfg.ChunkSize, convey.ShouldEqual, 500)
				convey.So(cfg.ChunkOverlap, convey.ShouldEqual, 50)
				convey.So(cfg.UpcomingDays, convey.ShouldEqual, 14)
			})
		})

		convey.Convey("When loading config with both file and env vars", func() {
			yamlContent := `
addr: ":9090"
audit_worker_count: 4
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("STUDYPLAN_CONFIG", tmpFile)
			_ = os.Setenv("STUDYPLAN_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars should take precedence over file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.AuditWorkerCount, convey.ShouldEqual, 4)
			})
		})
	})
}

func TestConfigLoaderEdgeCases(t *testing.T) {
	convey.Convey("Given edge cases for config loading", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile("addr: [unclosed\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("STUDYPLAN_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("STUDYPLAN_CONFIG", "/non/existent/studyplan.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty address", func() {
			_ = os.Setenv("STUDYPLAN_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the postgres driver has no DSN", func() {
			_ = os.Setenv("STUDYPLAN_STORE_DRIVER", "postgres")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading partial YAML", func() {
			tmpFile := createTempConfigFile("max_alternatives: 5\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("STUDYPLAN_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then unspecified values keep their defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MaxAlternatives, convey.ShouldEqual, 5)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.AdjacencyWindowMinutes, convey.ShouldEqual, 30)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"STUDYPLAN_CONFIG",
		"STUDYPLAN_ADDR",
		"STUDYPLAN_TIMEZONE",
		"STUDYPLAN_LLM_ENABLED",
		"STUDYPLAN_LLM_API_KEY",
		"STUDYPLAN_LLM_CONFIDENCE_THRESHOLD",
		"STUDYPLAN_AUDIT_QUEUE_SIZE",
		"STUDYPLAN_STORE_DRIVER",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "studyplan-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
