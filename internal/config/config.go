// Package config loads settings for the swarm command line tool.
//
// Sources, lowest priority first:
//  1. built-in defaults
//  2. an optional YAML file
//  3. SWARM_* environment variables (SWARM_LOG_LEVEL sets log.level)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/time/rate"

	swarm "github.com/pbelskiy/helix-swarm"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "SWARM_"

// Config holds the command line tool settings.
type Config struct {
	// URL of the Swarm API including the version, e.g. https://swarm/api/v9.
	URL      string        `koanf:"url"`
	User     string        `koanf:"user"`
	Password string        `koanf:"password"`
	Timeout  time.Duration `koanf:"timeout"`
	Verify   bool          `koanf:"verify"`
	// Retry uses the keys of swarm.WithRetryOptions. Empty disables retries.
	Retry map[string]any `koanf:"retry"`
	Rate  RateConfig     `koanf:"rate"`
	Log   LogConfig      `koanf:"log"`
}

// RateConfig throttles outgoing requests. Limit 0 disables throttling.
type RateConfig struct {
	Limit float64 `koanf:"limit"`
	Burst int     `koanf:"burst"`
}

// LogConfig selects the hclog level: trace, debug, info, warn, error or off.
type LogConfig struct {
	Level string `koanf:"level"`
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Rate),
		validation.Field(&c.Log),
	)
}

func (r RateConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Limit, validation.Min(0.0)),
		validation.Field(&r.Burst, validation.Min(0)),
	)
}

func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("trace", "debug", "info", "warn", "error", "off")),
	)
}

func defaults() map[string]any {
	return map[string]any{
		"timeout":    "30s",
		"verify":     true,
		"rate.limit": 0,
		"rate.burst": 1,
		"log.level":  "warn",
	}
}

// Load reads the configuration. path names an optional YAML file; a missing
// file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		err := k.Load(file.Provider(path), yaml.Parser())
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnv,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// transformEnv maps SWARM_RETRY_TOTAL to retry.total. List values under
// retry are comma separated.
func transformEnv(key, value string) (string, any) {
	key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "_", ".")
	switch key {
	case "retry.statuses", "retry.methods":
		return key, strings.Split(value, ",")
	}
	return key, value
}

// LoadDotEnv exports the variables of a .env file at path. A missing file is
// ignored.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Logger returns a logger at the configured level.
func (c *Config) Logger(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: hclog.LevelFromString(c.Log.Level),
	})
}

// ClientOptions translates the configuration into client options.
func (c *Config) ClientOptions(logger hclog.Logger) []swarm.Option {
	opts := []swarm.Option{
		swarm.WithTimeout(c.Timeout),
		swarm.WithVerify(c.Verify),
		swarm.WithLogger(logger),
	}
	if len(c.Retry) > 0 {
		opts = append(opts, swarm.WithRetryOptions(c.Retry))
	}
	if c.Rate.Limit > 0 {
		opts = append(opts, swarm.WithRateLimit(rate.Limit(c.Rate.Limit), max(c.Rate.Burst, 1)))
	}
	return opts
}
