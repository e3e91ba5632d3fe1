package config

import (
	"fmt"
	"math"
)

const (
	// MinCheckIntervalSeconds is the lowest accepted sampling cadence
	MinCheckIntervalSeconds = 10
	// MinConsecutiveChecks is the lowest accepted streak length
	MinConsecutiveChecks = 1
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Path + ": " + e.Message
}

// Validate checks if the configuration is valid
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateThresholdRatio()...)
	errors = append(errors, c.validateCheckInterval()...)
	errors = append(errors, c.validateRequiredChecks()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validatePaths()...)

	return errors
}

func (c *Config) validateThresholdRatio() []ValidationError {
	if c.LoadThresholdRatio > 0 && !math.IsInf(c.LoadThresholdRatio, 1) && !math.IsNaN(c.LoadThresholdRatio) {
		return nil
	}

	return []ValidationError{{
		Path:    "load_threshold_ratio",
		Message: fmt.Sprintf("must be a positive finite number, got %v", c.LoadThresholdRatio),
	}}
}

func (c *Config) validateCheckInterval() []ValidationError {
	if c.CheckIntervalSeconds >= MinCheckIntervalSeconds {
		return nil
	}

	return []ValidationError{{
		Path:    "check_interval_seconds",
		Message: fmt.Sprintf("must be at least %d, got %d", MinCheckIntervalSeconds, c.CheckIntervalSeconds),
	}}
}

func (c *Config) validateRequiredChecks() []ValidationError {
	if c.ConsecutiveChecksRequired >= MinConsecutiveChecks {
		return nil
	}

	return []ValidationError{{
		Path:    "consecutive_checks_required",
		Message: fmt.Sprintf("must be at least %d, got %d", MinConsecutiveChecks, c.ConsecutiveChecksRequired),
	}}
}

func (c *Config) validateLogging() []ValidationError {
	validLevels := []string{"debug", "info", "warn", "error"}
	if contains(validLevels, c.LogLevel) {
		return nil
	}

	return []ValidationError{{
		Path:    "log_level",
		Message: fmt.Sprintf("must be one of %v, got '%s'", validLevels, c.LogLevel),
	}}
}

func (c *Config) validatePaths() []ValidationError {
	var errors []ValidationError

	if c.LogFilePath == "" {
		errors = append(errors, ValidationError{
			Path:    "log_file_path",
			Message: "must not be empty",
		})
	}

	if c.StateDir == "" {
		errors = append(errors, ValidationError{
			Path:    "state_dir",
			Message: "must not be empty",
		})
	}

	return errors
}

// contains checks if a string is in a slice
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
