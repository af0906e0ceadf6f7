// Package config holds the configuration of the mlbids cli, read from
// `mlbids.json5` with an optional `mlbids.local.json5` override.
package config

import (
	"fmt"
	"mlbids/internal/components/telemetry"
	"mlbids/internal/scrapers/sfbb"
	"mlbids/internal/store"
	"mlbids/lib/configutil"
	"time"

	"github.com/go-playground/validator/v10"
)

const DefaultPath = "mlbids.json5"

type Config struct {
	ToolsURL          string               `json:"tools_url" validate:"required,url"`
	UserAgent         string               `json:"user_agent" validate:"required"`
	TimeoutSeconds    int                  `json:"timeout_seconds" validate:"gte=1,lte=600"`
	RequestsPerSecond float64              `json:"requests_per_second" validate:"gte=0"`
	SchemaDir         string               `json:"schema_dir" validate:"omitempty,dir"`
	DumpDir           string               `json:"dump_dir"`
	// Timezone is the IANA location cron specs are evaluated in, empty means
	// the local timezone.
	Timezone string               `json:"timezone" validate:"omitempty,timezone"`
	Database store.Config         `json:"database"`
	Otlp     telemetry.OtlpConfig `json:"otlp"`
}

func Default() Config {
	return Config{
		ToolsURL:          sfbb.DefaultToolsURL,
		UserAgent:         sfbb.DefaultUserAgent,
		TimeoutSeconds:    30,
		RequestsPerSecond: 2,
		Database: store.Config{
			File: "mlbids.db",
		},
	}
}

var validate = validator.New()

func (c Config) Validate() error {
	err := validate.Struct(c)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Locate returns the nearest DefaultPath in `dir` or one of its parents,
// DefaultPath itself when there is none.
func Locate(dir string) string {
	path, err := configutil.FindUp(dir, DefaultPath)
	if err != nil {
		return DefaultPath
	}
	return path
}

// Load reads the config file at `path` on top of the defaults, a missing file
// yields the defaults. A value set in the file wins even when it is zero.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadConfigOr(path, Default())
	if err != nil {
		return Config{}, err
	}
	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithOverrides applies every non-zero field of `overrides` and validates the
// result.
func (c Config) WithOverrides(overrides Config) (Config, error) {
	out, err := configutil.Override(c, overrides)
	if err != nil {
		return Config{}, err
	}
	err = out.Validate()
	if err != nil {
		return Config{}, err
	}
	return out, nil
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Location is nil when no timezone is configured.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return nil, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c Config) ClientOptions() sfbb.ClientOptions {
	return sfbb.ClientOptions{
		UserAgent:         c.UserAgent,
		Timeout:           c.Timeout(),
		RequestsPerSecond: c.RequestsPerSecond,
	}
}
