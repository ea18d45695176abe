// Package config loads client configuration from the environment.
// Variables are parsed from the SMARTMAP_ prefix.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Config holds the tunables of the SmartMap client core.
type Config struct {
	// ServerURL is the base URL of the SmartMap API.
	ServerURL string `envconfig:"SERVER_URL" default:"http://localhost:8080"`

	// DBPath is the sqlite file backing the local store.
	DBPath string `envconfig:"DB_PATH" default:"smartmap.db"`

	// LogLevel is a zerolog level name (trace..panic).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// RefreshInterval is how often friend positions are polled.
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"10s"`

	// HTTPTimeout bounds each API round trip.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`

	// SearchTTL bounds how long online search results are reused.
	SearchTTL time.Duration `envconfig:"SEARCH_TTL" default:"5m"`

	// NearThreshold is how far, in metres, the device may move before a
	// nearby-events query stops being reusable.
	NearThreshold float64 `envconfig:"NEAR_THRESHOLD" default:"500"`

	// DebugHTTP dumps API requests and responses to the log.
	DebugHTTP bool `envconfig:"DEBUG_HTTP" default:"false"`
}

// Load populates Config from environment variables (prefix SMARTMAP_).
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("SMARTMAP", &c); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return c, nil
}

// Level parses LogLevel, falling back to info on junk input.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
