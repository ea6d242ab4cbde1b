package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/apodex/pkg/apod"
	"github.com/glorpus-work/apodex/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, apod.DefaultAPIKey, cfg.Settings.APIKey)
	assert.Equal(t, apod.DefaultEndpoint, cfg.Settings.APIEndpoint)
	assert.Equal(t, ".", cfg.Settings.OutputDir)
	assert.Equal(t, 30*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, 3, cfg.Settings.MaxConcurrentDownloads)
	assert.Equal(t, 3, cfg.Settings.MaxConcurrentExports)
	assert.Equal(t, []string{"2020-03-01"}, cfg.Settings.DefaultDates)
	assert.Equal(t, "text", cfg.Settings.OutputFormat)
	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "auto", cfg.Settings.LogFormat)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := LoadConfig("")
		assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)
	})

	t.Run("partial file gets defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `version: "1.0"
settings:
  output_dir: /tmp/apod
  max_concurrent_downloads: 8
  http_timeout: 5s
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/apod", cfg.Settings.OutputDir)
		assert.Equal(t, 8, cfg.Settings.MaxConcurrentDownloads)
		assert.Equal(t, 3, cfg.Settings.MaxConcurrentExports)
		assert.Equal(t, 5*time.Second, cfg.Settings.HTTPTimeout)
		assert.Equal(t, apod.DefaultAPIKey, cfg.Settings.APIKey)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadConfigFromReader(strings.NewReader("settings: [unclosed"))
		assert.ErrorIs(t, err, errors.ErrConfigParse)
	})

	t.Run("unsupported version", func(t *testing.T) {
		_, err := LoadConfigFromReader(strings.NewReader(`version: "2.1"`))
		assert.ErrorIs(t, err, errors.ErrConfigValidation)
		assert.Contains(t, err.Error(), "unsupported config version")
	})

	t.Run("negative concurrency", func(t *testing.T) {
		_, err := LoadConfigFromReader(strings.NewReader("settings:\n  max_concurrent_exports: -1\n"))
		assert.ErrorIs(t, err, errors.ErrConfigValidation)
	})
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Settings.APIKey = "my-secret-key-123"
	cfg.Settings.MaxConcurrentExports = 1

	require.NoError(t, cfg.SaveConfig(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	assert.ErrorIs(t, cfg.SaveConfig(""), errors.ErrEmptyConfigPath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"defaults", func(*Config) {}, nil},
		{"bad version", func(c *Config) { c.Version = "abc" }, errors.ErrConfigVersion},
		{"zero downloads", func(c *Config) { c.Settings.MaxConcurrentDownloads = 0 }, errors.ErrMaxConcurrentInvalid},
		{"zero exports", func(c *Config) { c.Settings.MaxConcurrentExports = 0 }, errors.ErrMaxConcurrentInvalid},
		{"negative timeout", func(c *Config) { c.Settings.HTTPTimeout = -time.Second }, errors.ErrHTTPTimeoutNegative},
		{"separator in prefix", func(c *Config) { c.Settings.ArtifactPrefix = "a/b" }, errors.ErrInvalidPath},
		{"output format", func(c *Config) { c.Settings.OutputFormat = "xml" }, errors.ErrInvalidOutputFormat},
		{"log level", func(c *Config) { c.Settings.LogLevel = "loud" }, errors.ErrInvalidLogLevel},
		{"log format", func(c *Config) { c.Settings.LogFormat = "pretty" }, errors.ErrConfigValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAPIKey:                 "env-key",
		EnvOutputDir:              "/data/apod",
		EnvMaxConcurrentDownloads: "7",
		EnvMaxConcurrentExports:   "2",
		EnvHTTPTimeout:            "10s",
	}
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, "env-key", cfg.Settings.APIKey)
	assert.Equal(t, "/data/apod", cfg.Settings.OutputDir)
	assert.Equal(t, 7, cfg.Settings.MaxConcurrentDownloads)
	assert.Equal(t, 2, cfg.Settings.MaxConcurrentExports)
	assert.Equal(t, 10*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, apod.DefaultEndpoint, cfg.Settings.APIEndpoint)

	t.Run("not a number", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.ApplyEnv(func(k string) string {
			if k == EnvMaxConcurrentDownloads {
				return "many"
			}
			return ""
		})
		assert.ErrorIs(t, err, errors.ErrConfigValidation)
	})

	t.Run("zero rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.ApplyEnv(func(k string) string {
			if k == EnvMaxConcurrentExports {
				return "0"
			}
			return ""
		})
		assert.ErrorIs(t, err, errors.ErrConfigValidation)
	})
}

func TestGetSetValue(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.SetValue("max_concurrent_downloads", "12"))
	v, err := cfg.GetValue("max_concurrent_downloads")
	require.NoError(t, err)
	assert.Equal(t, "12", v)

	require.NoError(t, cfg.SetValue("default_dates", "2020-03-01, 2021-01-01,"))
	assert.Equal(t, []string{"2020-03-01", "2021-01-01"}, cfg.Settings.DefaultDates)

	require.NoError(t, cfg.SetValue("http_timeout", "1m"))
	v, err = cfg.GetValue("http_timeout")
	require.NoError(t, err)
	assert.Equal(t, "1m0s", v)

	require.NoError(t, cfg.SetValue("api_key", "abcdefghijklmnop"))
	v, err = cfg.GetValue("api_key")
	require.NoError(t, err)
	assert.Equal(t, "abcdefghij...", v)

	t.Run("unknown key", func(t *testing.T) {
		assert.ErrorIs(t, cfg.SetValue("nope", "x"), errors.ErrUnknownConfigKey)
		_, err := cfg.GetValue("nope")
		assert.ErrorIs(t, err, errors.ErrUnknownConfigKey)
	})

	t.Run("invalid value leaves config unchanged", func(t *testing.T) {
		err := cfg.SetValue("max_concurrent_exports", "0")
		assert.ErrorIs(t, err, errors.ErrMaxConcurrentInvalid)
		assert.Equal(t, 3, cfg.Settings.MaxConcurrentExports)

		assert.Error(t, cfg.SetValue("locator_cache_size", "lots"))
	})
}

func TestToMap(t *testing.T) {
	cfg := DefaultConfig()
	m := cfg.ToMap()

	assert.Equal(t, CurrentVersion, m["version"])
	assert.Equal(t, "DEMO_KEY", m["api_key"])
	assert.Equal(t, "3", m["max_concurrent_exports"])
	assert.Equal(t, "2020-03-01", m["default_dates"])
	assert.Len(t, m, 14)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "DEMO_KEY", MaskSecret("DEMO_KEY"))
	assert.Equal(t, "0123456789", MaskSecret("0123456789"))
	assert.Equal(t, "0123456789...", MaskSecret("0123456789abc"))
}
