// Package config loads gosolve settings from YAML or TOML files with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gosolve"
)

// Config holds all gosolve configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine" toml:"engine"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Batch   BatchConfig   `yaml:"batch" toml:"batch"`
}

// EngineConfig mirrors gosolve.Options.
type EngineConfig struct {
	DomainMin         float64 `yaml:"domain_min" toml:"domain_min"`
	DomainMax         float64 `yaml:"domain_max" toml:"domain_max"`
	SampleCount       int     `yaml:"sample_count" toml:"sample_count"`
	MaxIterations     int     `yaml:"max_iterations" toml:"max_iterations"`
	Tolerance         float64 `yaml:"tolerance" toml:"tolerance"`
	ImagTolerance     float64 `yaml:"imag_tolerance" toml:"imag_tolerance"`
	SignificantDigits int     `yaml:"significant_digits" toml:"significant_digits"`
	RootSearchMin     float64 `yaml:"root_search_min" toml:"root_search_min"`
	RootSearchMax     float64 `yaml:"root_search_max" toml:"root_search_max"`
	ScanPoints        int     `yaml:"scan_points" toml:"scan_points"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level" toml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development" toml:"development"`
}

// ServerConfig configures the HTTP tool server. Timeouts are duration
// strings such as "15s".
type ServerConfig struct {
	Addr              string `yaml:"addr" toml:"addr"`
	ReadHeaderTimeout string `yaml:"read_header_timeout" toml:"read_header_timeout"`
	ReadTimeout       string `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout      string `yaml:"write_timeout" toml:"write_timeout"`
	IdleTimeout       string `yaml:"idle_timeout" toml:"idle_timeout"`
	MaxBodyBytes      int64  `yaml:"max_body_bytes" toml:"max_body_bytes"`
}

// BatchConfig bounds concurrent batch solving.
type BatchConfig struct {
	Workers int `yaml:"workers" toml:"workers"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	opts := gosolve.DefaultOptions()
	return &Config{
		Engine: EngineConfig{
			DomainMin:         opts.DomainMin,
			DomainMax:         opts.DomainMax,
			SampleCount:       opts.SampleCount,
			MaxIterations:     opts.MaxIterations,
			Tolerance:         opts.Tolerance,
			ImagTolerance:     opts.ImagTolerance,
			SignificantDigits: opts.SignificantDigits,
			RootSearchMin:     opts.RootSearchMin,
			RootSearchMax:     opts.RootSearchMax,
			ScanPoints:        opts.ScanPoints,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:              "127.0.0.1:8080",
			ReadHeaderTimeout: "5s",
			ReadTimeout:       "15s",
			WriteTimeout:      "15s",
			IdleTimeout:       "60s",
			MaxBodyBytes:      1 << 20,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads configuration from path. The format follows the extension:
// .toml is TOML, anything else YAML. A missing file yields the defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		case isTOML(path):
			if _, err := toml.Decode(string(data), cfg); err != nil {
				return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
			}
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path in the format its extension names.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	if isTOML(path) {
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(c); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = []byte(sb.String())
	} else {
		var err error
		if data, err = yaml.Marshal(c); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies GOSOLVE_* environment variables. Values that do
// not parse are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GOSOLVE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("GOSOLVE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("GOSOLVE_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.MaxIterations = n
		}
	}
	if v := os.Getenv("GOSOLVE_SAMPLE_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.SampleCount = n
		}
	}
	if v := os.Getenv("GOSOLVE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Batch.Workers = n
		}
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs error
	e := c.Engine
	if e.DomainMin >= e.DomainMax {
		errs = multierr.Append(errs, fmt.Errorf("engine: domain_min %g must be below domain_max %g", e.DomainMin, e.DomainMax))
	}
	if e.SampleCount < 2 {
		errs = multierr.Append(errs, fmt.Errorf("engine: sample_count must be at least 2, got %d", e.SampleCount))
	}
	if e.MaxIterations < 1 {
		errs = multierr.Append(errs, fmt.Errorf("engine: max_iterations must be positive, got %d", e.MaxIterations))
	}
	if e.Tolerance <= 0 || e.ImagTolerance <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("engine: tolerances must be positive"))
	}
	if e.SignificantDigits < 1 || e.SignificantDigits > 17 {
		errs = multierr.Append(errs, fmt.Errorf("engine: significant_digits must be in [1, 17], got %d", e.SignificantDigits))
	}
	if e.RootSearchMin >= e.RootSearchMax {
		errs = multierr.Append(errs, fmt.Errorf("engine: root_search_min must be below root_search_max"))
	}
	if e.ScanPoints < 2 {
		errs = multierr.Append(errs, fmt.Errorf("engine: scan_points must be at least 2, got %d", e.ScanPoints))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("logging: %w", err))
	}
	for name, v := range map[string]string{
		"read_header_timeout": c.Server.ReadHeaderTimeout,
		"read_timeout":        c.Server.ReadTimeout,
		"write_timeout":       c.Server.WriteTimeout,
		"idle_timeout":        c.Server.IdleTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("server: %s: %w", name, err))
		}
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("server: max_body_bytes must be positive"))
	}
	if c.Batch.Workers < 1 {
		errs = multierr.Append(errs, fmt.Errorf("batch: workers must be positive, got %d", c.Batch.Workers))
	}
	return errs
}

// EngineOptions converts the engine section.
func (c *Config) EngineOptions() gosolve.Options {
	e := c.Engine
	return gosolve.Options{
		DomainMin:         e.DomainMin,
		DomainMax:         e.DomainMax,
		SampleCount:       e.SampleCount,
		MaxIterations:     e.MaxIterations,
		Tolerance:         e.Tolerance,
		ImagTolerance:     e.ImagTolerance,
		SignificantDigits: e.SignificantDigits,
		RootSearchMin:     e.RootSearchMin,
		RootSearchMax:     e.RootSearchMax,
		ScanPoints:        e.ScanPoints,
	}
}

// Timeouts parses the server timeouts. Validate has already checked them;
// an unparsable value falls back to zero.
func (s ServerConfig) Timeouts() (readHeader, read, write, idle time.Duration) {
	parse := func(v string) time.Duration {
		d, _ := time.ParseDuration(v)
		return d
	}
	return parse(s.ReadHeaderTimeout), parse(s.ReadTimeout), parse(s.WriteTimeout), parse(s.IdleTimeout)
}

// BuildLogger builds a zap logger from the logging section. verbose forces
// the debug level.
func (c *Config) BuildLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
