package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "STUDYPLAN_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if STUDYPLAN_CONFIG is set
//  3. env (prefix STUDYPLAN_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// STUDYPLAN_LLM_API_KEY -> llm_api_key (flat keys)
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LLMConfidenceThreshold < 0 || c.LLMConfidenceThreshold > 1:
		return fmt.Errorf("%w: llm_confidence_threshold must be within [0,1]", ErrInvalidConfig)
	case c.LLMTimeoutMS <= 0:
		return fmt.Errorf("%w: llm_timeout_ms must be positive", ErrInvalidConfig)
	case c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize:
		return fmt.Errorf("%w: chunk_overlap must be smaller than chunk_size", ErrInvalidConfig)
	case c.AdjacencyWindowMinutes < 0:
		return fmt.Errorf("%w: adjacency_window_minutes must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	switch c.CalendarProvider {
	case CalendarMemory:
	case CalendarGoogle:
		if c.GoogleAccessToken == "" && c.GoogleRefreshToken == "" {
			return fmt.Errorf("%w: google calendar needs google_access_token or google_refresh_token", ErrInvalidConfig)
		}
	case CalendarICS:
		if c.ICSURL == "" {
			return fmt.Errorf("%w: ics calendar needs ics_url", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown calendar_provider %q", ErrInvalidConfig, c.CalendarProvider)
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("%w: postgres store needs database_dsn", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}
