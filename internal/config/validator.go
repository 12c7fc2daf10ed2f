package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "timer.interval_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateTimer()...)
	errors = append(errors, c.validateNotify()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateDispatch()...)

	return errors
}

// validateTimer validates the TimerConfig
func (c *Config) validateTimer() []ValidationError {
	var errors []ValidationError

	if c.Timer.IntervalMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "timer.interval_ms",
			Value:   c.Timer.IntervalMs,
			Message: "must be non-negative",
		})
	}

	if c.Timer.LeewayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "timer.leeway_ms",
			Value:   c.Timer.LeewayMs,
			Message: "must be non-negative",
		})
	}

	// A one-shot timer can only ever deliver a single tick
	if c.Timer.Ticks < 1 {
		errors = append(errors, ValidationError{
			Field:   "timer.ticks",
			Value:   c.Timer.Ticks,
			Message: "must be at least 1",
		})
	} else if c.Timer.IntervalMs == 0 && c.Timer.Ticks > 1 {
		errors = append(errors, ValidationError{
			Field:   "timer.ticks",
			Value:   c.Timer.Ticks,
			Message: "must be 1 when timer.interval_ms is 0",
		})
	}

	if !slices.Contains(ValidExecutors(), c.Timer.Executor) {
		errors = append(errors, ValidationError{
			Field:   "timer.executor",
			Value:   c.Timer.Executor,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidExecutors(), ", ")),
		})
	}

	return errors
}

// validateNotify validates the NotifyConfig
func (c *Config) validateNotify() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidBackends(), c.Notify.Backend) {
		errors = append(errors, ValidationError{
			Field:   "notify.backend",
			Value:   c.Notify.Backend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBackends(), ", ")),
		})
	}

	if c.Notify.Backend == "file" {
		if c.Notify.Dir == "" {
			errors = append(errors, ValidationError{
				Field:   "notify.dir",
				Value:   c.Notify.Dir,
				Message: "is required for the file backend",
			})
		} else if strings.ContainsRune(c.Notify.Dir, '\x00') {
			errors = append(errors, ValidationError{
				Field:   "notify.dir",
				Value:   c.Notify.Dir,
				Message: "path contains invalid null character",
			})
		}
	}

	if c.Notify.PollIntervalMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "notify.poll_interval_ms",
			Value:   c.Notify.PollIntervalMs,
			Message: "must be positive",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateDispatch validates the DispatchConfig
func (c *Config) validateDispatch() []ValidationError {
	var errors []ValidationError

	const maxPoolSize = 256
	if c.Dispatch.PoolSize < 1 || c.Dispatch.PoolSize > maxPoolSize {
		errors = append(errors, ValidationError{
			Field:   "dispatch.pool_size",
			Value:   c.Dispatch.PoolSize,
			Message: fmt.Sprintf("must be between 1 and %d", maxPoolSize),
		})
	}

	return errors
}
