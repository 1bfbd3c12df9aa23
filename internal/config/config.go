// Package config defines service configuration and its loading.
//
// Values are layered: defaults from New, then an optional YAML file named by
// STUDYPLAN_CONFIG, then STUDYPLAN_* environment variables.
package config

import "time"

// Calendar providers.
const (
	CalendarMemory = "memory"
	CalendarGoogle = "google"
	CalendarICS    = "ics"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Timezone is the IANA zone relative times are resolved in.
	Timezone string `koanf:"timezone"`

	// LLM extraction. Disabled unless both enabled and a key is set.
	LLMEnabled             bool    `koanf:"llm_enabled"`
	LLMAPIKey              string  `koanf:"llm_api_key"`
	LLMBaseURL             string  `koanf:"llm_base_url"`
	LLMModel               string  `koanf:"llm_model"`
	LLMTimeoutMS           int     `koanf:"llm_timeout_ms"`
	LLMConfidenceThreshold float64 `koanf:"llm_confidence_threshold"`

	// CalendarProvider selects memory, google or ics.
	CalendarProvider   string `koanf:"calendar_provider"`
	CalendarID         string `koanf:"calendar_id"`
	GoogleAccessToken  string `koanf:"google_access_token"`
	GoogleRefreshToken string `koanf:"google_refresh_token"`
	GoogleClientID     string `koanf:"google_client_id"`
	GoogleClientSecret string `koanf:"google_client_secret"`
	ICSURL             string `koanf:"ics_url"`
	ICSRefreshCron     string `koanf:"ics_refresh_cron"`

	// StoreDriver selects memory or postgres.
	StoreDriver string `koanf:"store_driver"`
	DatabaseDSN string `koanf:"database_dsn"`

	// AuditQueueSize bounds the audit queue; AuditWorkerCount sets its writers.
	AuditQueueSize   int `koanf:"audit_queue_size"`
	AuditWorkerCount int `koanf:"audit_worker_count"`

	// ImportDedupeSize bounds the syllabus import idempotency cache.
	ImportDedupeSize int `koanf:"import_dedupe_size"`

	// Syllabus splitting, in characters.
	ChunkSize    int `koanf:"chunk_size"`
	ChunkOverlap int `koanf:"chunk_overlap"`

	// UpcomingDays is the default window of GET /syllabus/upcoming.
	UpcomingDays int `koanf:"upcoming_days"`

	// Conflict resolution.
	AdjacencyWindowMinutes int `koanf:"adjacency_window_minutes"`
	MaxAlternatives        int `koanf:"max_alternatives"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		Timezone:               "UTC",
		LLMModel:               "gpt-4o-mini",
		LLMTimeoutMS:           8000,
		LLMConfidenceThreshold: 0.6,
		CalendarProvider:       CalendarMemory,
		CalendarID:             "primary",
		ICSRefreshCron:         "*/15 * * * *",
		StoreDriver:            StoreMemory,
		AuditQueueSize:         1024,
		AuditWorkerCount:       2,
		ImportDedupeSize:       50_000,
		ChunkSize:              1000,
		ChunkOverlap:           200,
		UpcomingDays:           30,
		AdjacencyWindowMinutes: 30,
		MaxAlternatives:        3,
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LLMTimeout returns LLMTimeoutMS as a duration.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutMS) * time.Millisecond
}

// LLMActive reports whether the LLM stage should run.
func (c *Config) LLMActive() bool {
	return c.LLMEnabled && c.LLMAPIKey != ""
}

// AdjacencyWindow returns AdjacencyWindowMinutes as a duration.
func (c *Config) AdjacencyWindow() time.Duration {
	return time.Duration(c.AdjacencyWindowMinutes) * time.Minute
}
