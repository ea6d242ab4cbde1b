// Package errors defines the sentinel errors shared across apodex and small
// helpers for adding context while keeping them matchable with errors.Is.
package errors

import "fmt"

// Common error types.
var (
	// Batch errors.
	ErrConfiguration = fmt.Errorf("invalid batch configuration")
	ErrLocate        = fmt.Errorf("locate failed")
	ErrFetch         = fmt.Errorf("fetch failed")
	ErrPersist       = fmt.Errorf("persist failed")
	ErrBatchFailed   = fmt.Errorf("one or more items failed")

	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrConfigVersion     = fmt.Errorf("unsupported config version")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")

	// ErrMaxConcurrentInvalid is returned when a concurrency limit is less than 1.
	ErrMaxConcurrentInvalid = fmt.Errorf("concurrency limit must be at least 1")

	// ErrHTTPTimeoutNegative is returned when the HTTP timeout is set to a negative value.
	ErrHTTPTimeoutNegative = fmt.Errorf("http_timeout cannot be negative")

	ErrInvalidOutputFormat = fmt.Errorf("invalid output format")
	ErrInvalidLogLevel     = fmt.Errorf("invalid log level")
	ErrInvalidPath         = fmt.Errorf("invalid path")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Mark attaches a sentinel to err so that errors.Is matches both the
// sentinel and the original cause.
func Mark(sentinel, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// ErrInvalidOutputFormatWithDetails creates an error naming the rejected format.
func ErrInvalidOutputFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json, yaml", ErrInvalidOutputFormat, format)
}

// ErrInvalidLogLevelWithDetails creates an error naming the rejected level.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrUnknownConfigKeyWithName creates an error naming the rejected key.
func ErrUnknownConfigKeyWithName(key string) error {
	return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
}
