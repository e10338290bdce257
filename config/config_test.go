package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/njchilds90/gosolve"
)

func TestDefaultConfig_MatchesEngineDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, gosolve.DefaultOptions(), cfg.EngineOptions())
	assert.Equal(t, 4, cfg.Batch.Workers)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, name := range []string{"gosolve.yaml", "gosolve.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := DefaultConfig()
			cfg.Engine.SampleCount = 801
			cfg.Engine.Tolerance = 1e-12
			cfg.Logging.Level = "debug"
			cfg.Server.Addr = ":9090"
			cfg.Batch.Workers = 8

			require.NoError(t, cfg.Save(path))
			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoad_PartialYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  significant_digits: 8\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Engine.SignificantDigits)
	assert.Equal(t, 400, cfg.Engine.SampleCount)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[engine\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse TOML")
}

func TestEnvOverrides(t *testing.T) {
	t.Run("GOSOLVE_LOG_LEVEL and GOSOLVE_ADDR", func(t *testing.T) {
		t.Setenv("GOSOLVE_LOG_LEVEL", "warn")
		t.Setenv("GOSOLVE_ADDR", ":7070")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, ":7070", cfg.Server.Addr)
	})

	t.Run("numeric overrides", func(t *testing.T) {
		t.Setenv("GOSOLVE_MAX_ITERATIONS", "500")
		t.Setenv("GOSOLVE_WORKERS", "2")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 500, cfg.Engine.MaxIterations)
		assert.Equal(t, 2, cfg.Batch.Workers)
	})

	t.Run("unparsable numbers are ignored", func(t *testing.T) {
		t.Setenv("GOSOLVE_SAMPLE_COUNT", "many")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 400, cfg.Engine.SampleCount)
	})
}

func TestValidate_CollectsEveryError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.DomainMin = 5
	cfg.Engine.DomainMax = -5
	cfg.Engine.SampleCount = 1
	cfg.Logging.Level = "loud"
	cfg.Server.ReadTimeout = "soon"
	cfg.Batch.Workers = 0

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"domain_min", "sample_count", "logging", "read_timeout", "workers"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestServerTimeouts(t *testing.T) {
	rh, r, w, idle := DefaultConfig().Server.Timeouts()
	assert.Equal(t, 5*time.Second, rh)
	assert.Equal(t, 15*time.Second, r)
	assert.Equal(t, 15*time.Second, w)
	assert.Equal(t, time.Minute, idle)
}

func TestBuildLogger(t *testing.T) {
	cfg := DefaultConfig()
	logger, err := cfg.BuildLogger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	verbose, err := cfg.BuildLogger(true)
	require.NoError(t, err)
	assert.True(t, verbose.Core().Enabled(zapcore.DebugLevel))

	cfg.Logging.Level = "nope"
	_, err = cfg.BuildLogger(false)
	assert.Error(t, err)
}
