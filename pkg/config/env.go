package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/glorpus-work/apodex/pkg/errors"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey                 = "NASA_API_KEY"
	EnvAPIEndpoint            = "APODEX_API_ENDPOINT"
	EnvOutputDir              = "APODEX_OUTPUT_DIR"
	EnvHTTPTimeout            = "APODEX_HTTP_TIMEOUT"
	EnvMaxConcurrentDownloads = "APODEX_MAX_CONCURRENT_DOWNLOADS"
	EnvMaxConcurrentExports   = "APODEX_MAX_CONCURRENT_EXPORTS"
)

// ApplyEnv overrides settings from the environment and re-validates.
// getenv is usually os.Getenv; unset or empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvAPIKey); v != "" {
		c.Settings.APIKey = v
	}
	if v := getenv(EnvAPIEndpoint); v != "" {
		c.Settings.APIEndpoint = v
	}
	if v := getenv(EnvOutputDir); v != "" {
		c.Settings.OutputDir = v
	}
	if v := getenv(EnvHTTPTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", errors.ErrConfigValidation, EnvHTTPTimeout, err)
		}
		c.Settings.HTTPTimeout = d
	}
	if err := envInt(getenv, EnvMaxConcurrentDownloads, &c.Settings.MaxConcurrentDownloads); err != nil {
		return err
	}
	if err := envInt(getenv, EnvMaxConcurrentExports, &c.Settings.MaxConcurrentExports); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return errors.Wrap(errors.ErrConfigValidation, err.Error())
	}
	return nil
}

func envInt(getenv func(string) string, name string, dst *int) error {
	v := getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errors.ErrConfigValidation, name, err)
	}
	*dst = n
	return nil
}
