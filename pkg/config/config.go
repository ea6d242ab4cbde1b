// Package config provides configuration management for apodex. It loads the
// YAML config file, fills in defaults, applies environment overrides and
// validates the result before anything else runs.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/apodex/pkg/apod"
	"github.com/glorpus-work/apodex/pkg/errors"
	"github.com/glorpus-work/apodex/pkg/fsutil"
)

// Config represents the application configuration.
type Config struct {
	// Version is the schema version of the config file.
	Version string `yaml:"version"`

	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// APOD API settings
	APIKey      string `yaml:"api_key,omitempty"`
	APIEndpoint string `yaml:"api_endpoint"`

	// Output settings
	OutputDir      string `yaml:"output_dir"`
	ArtifactPrefix string `yaml:"artifact_prefix"`
	ArtifactExt    string `yaml:"artifact_ext"`

	// Network settings
	HTTPTimeout            time.Duration `yaml:"http_timeout"`
	MaxConcurrentDownloads int           `yaml:"max_concurrent_downloads"`
	MaxConcurrentExports   int           `yaml:"max_concurrent_exports"`
	LocatorCacheSize       int           `yaml:"locator_cache_size"`

	// Default keys used when none are given on the command line
	DefaultDates []string `yaml:"default_dates,flow"`

	// Presentation settings
	OutputFormat string `yaml:"output_format"` // text, json, yaml
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
	LogFormat    string `yaml:"log_format"`    // text, json, auto
}

// Default configuration values.
const (
	// CurrentVersion is written to new config files.
	CurrentVersion = "1.0"

	// SupportedVersions is the constraint config files must satisfy.
	SupportedVersions = ">= 1.0, < 2.0"

	DefaultOutputDir      = "."
	DefaultArtifactPrefix = "apod-export-"
	DefaultArtifactExt    = ".jpg"
	DefaultDate           = "2020-03-01"

	// DefaultHTTPTimeout is the default timeout for each HTTP request and persist call.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultMaxConcurrent is the default limit for both downloads and exports.
	DefaultMaxConcurrent = 3

	DefaultLocatorCacheSize = apod.DefaultCacheSize

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Settings: Settings{
			APIKey:                 apod.DefaultAPIKey,
			APIEndpoint:            apod.DefaultEndpoint,
			OutputDir:              DefaultOutputDir,
			ArtifactPrefix:         DefaultArtifactPrefix,
			ArtifactExt:            DefaultArtifactExt,
			HTTPTimeout:            DefaultHTTPTimeout,
			MaxConcurrentDownloads: DefaultMaxConcurrent,
			MaxConcurrentExports:   DefaultMaxConcurrent,
			LocatorCacheSize:       DefaultLocatorCacheSize,
			DefaultDates:           []string{DefaultDate},
			OutputFormat:           "text",
			LogLevel:               "info",
			LogFormat:              "auto",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// SaveConfig atomically writes the configuration to path. The file may hold the
// API key, so it is created owner-readable only.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeSecure); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	data, err := c.ToYAML()
	if err != nil {
		return err
	}

	if err := fsutil.WriteFileAtomic(absPath, data, fsutil.FileModeSecure); err != nil {
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	var sb strings.Builder
	encoder := yaml.NewEncoder(&sb)
	encoder.SetIndent(YAMLIndent)
	if err := encoder.Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return []byte(sb.String()), nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateVersion(c.Version); err != nil {
		return err
	}
	return validateSettings(c.Settings)
}

func validateVersion(v string) error {
	parsed, err := version.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", errors.ErrConfigVersion, v, err)
	}
	constraint := version.MustConstraints(version.NewConstraint(SupportedVersions))
	if !constraint.Check(parsed) {
		return fmt.Errorf("%w: %s does not satisfy %s", errors.ErrConfigVersion, v, SupportedVersions)
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return errors.ErrHTTPTimeoutNegative
	}
	if s.MaxConcurrentDownloads < 1 {
		return fmt.Errorf("max_concurrent_downloads: %w", errors.ErrMaxConcurrentInvalid)
	}
	if s.MaxConcurrentExports < 1 {
		return fmt.Errorf("max_concurrent_exports: %w", errors.ErrMaxConcurrentInvalid)
	}
	if strings.ContainsAny(s.ArtifactPrefix+s.ArtifactExt, `/\`) {
		return fmt.Errorf("%w: artifact_prefix and artifact_ext cannot contain path separators", errors.ErrInvalidPath)
	}
	validFormats := map[string]bool{"text": true, "json": true, "yaml": true}
	if !validFormats[s.OutputFormat] {
		return errors.ErrInvalidOutputFormatWithDetails(s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	validLogFormats := map[string]bool{"text": true, "json": true, "auto": true}
	if !validLogFormats[s.LogFormat] {
		return fmt.Errorf("%w: invalid log format '%s', must be one of: text, json, auto", errors.ErrConfigValidation, s.LogFormat)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	dir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Settings.APIKey == "" {
		c.Settings.APIKey = defaults.Settings.APIKey
	}
	if c.Settings.APIEndpoint == "" {
		c.Settings.APIEndpoint = defaults.Settings.APIEndpoint
	}
	if c.Settings.OutputDir == "" {
		c.Settings.OutputDir = defaults.Settings.OutputDir
	}
	if c.Settings.ArtifactPrefix == "" {
		c.Settings.ArtifactPrefix = defaults.Settings.ArtifactPrefix
	}
	if c.Settings.ArtifactExt == "" {
		c.Settings.ArtifactExt = defaults.Settings.ArtifactExt
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.MaxConcurrentDownloads == 0 {
		c.Settings.MaxConcurrentDownloads = defaults.Settings.MaxConcurrentDownloads
	}
	if c.Settings.MaxConcurrentExports == 0 {
		c.Settings.MaxConcurrentExports = defaults.Settings.MaxConcurrentExports
	}
	if c.Settings.LocatorCacheSize == 0 {
		c.Settings.LocatorCacheSize = defaults.Settings.LocatorCacheSize
	}
	if len(c.Settings.DefaultDates) == 0 {
		c.Settings.DefaultDates = defaults.Settings.DefaultDates
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
}
