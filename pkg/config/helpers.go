package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/apodex/pkg/errors"
)

// secretPrefixLen is how much of a secret stays visible when masked.
const secretPrefixLen = 10

// MaskSecret keeps the first ten characters of s and replaces the rest with "...".
// Values no longer than the prefix are returned unchanged.
func MaskSecret(s string) string {
	if len(s) <= secretPrefixLen {
		return s
	}
	return s[:secretPrefixLen] + "..."
}

// GetValue gets a configuration value by key. The API key is masked.
func (c *Config) GetValue(key string) (string, error) {
	switch key {
	case "version":
		return c.Version, nil
	case "api_key":
		return MaskSecret(c.Settings.APIKey), nil
	case "api_endpoint":
		return c.Settings.APIEndpoint, nil
	case "output_dir":
		return c.Settings.OutputDir, nil
	case "artifact_prefix":
		return c.Settings.ArtifactPrefix, nil
	case "artifact_ext":
		return c.Settings.ArtifactExt, nil
	case "http_timeout":
		return c.Settings.HTTPTimeout.String(), nil
	case "max_concurrent_downloads":
		return strconv.Itoa(c.Settings.MaxConcurrentDownloads), nil
	case "max_concurrent_exports":
		return strconv.Itoa(c.Settings.MaxConcurrentExports), nil
	case "locator_cache_size":
		return strconv.Itoa(c.Settings.LocatorCacheSize), nil
	case "default_dates":
		return strings.Join(c.Settings.DefaultDates, ","), nil
	case "output_format":
		return c.Settings.OutputFormat, nil
	case "log_level":
		return c.Settings.LogLevel, nil
	case "log_format":
		return c.Settings.LogFormat, nil
	default:
		return "", errors.ErrUnknownConfigKeyWithName(key)
	}
}

// SetValue sets a configuration value by key and validates the result.
// On error the config is left unchanged.
func (c *Config) SetValue(key, value string) error {
	next := *c
	next.Settings.DefaultDates = append([]string(nil), c.Settings.DefaultDates...)
	s := &next.Settings

	switch key {
	case "api_key":
		s.APIKey = value
	case "api_endpoint":
		s.APIEndpoint = value
	case "output_dir":
		s.OutputDir = value
	case "artifact_prefix":
		s.ArtifactPrefix = value
	case "artifact_ext":
		s.ArtifactExt = value
	case "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for http_timeout: %w", err)
		}
		s.HTTPTimeout = d
	case "max_concurrent_downloads":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for max_concurrent_downloads: %w", err)
		}
		s.MaxConcurrentDownloads = n
	case "max_concurrent_exports":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for max_concurrent_exports: %w", err)
		}
		s.MaxConcurrentExports = n
	case "locator_cache_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for locator_cache_size: %w", err)
		}
		s.LocatorCacheSize = n
	case "default_dates":
		s.DefaultDates = splitList(value)
	case "output_format":
		s.OutputFormat = value
	case "log_level":
		s.LogLevel = strings.ToLower(value)
	case "log_format":
		s.LogFormat = value
	default:
		return errors.ErrUnknownConfigKeyWithName(key)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// ToMap converts the settings to a map keyed by their YAML names.
func (c *Config) ToMap() map[string]string {
	result := map[string]string{"version": c.Version}

	t := reflect.TypeOf(c.Settings)
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("yaml"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		if v, err := c.GetValue(tag); err == nil {
			result[tag] = v
		}
	}
	return result
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
