// Package config loads the daemon configuration from the environment.
// Priority: built-in defaults < environment variables. Configuration is
// loaded once at startup and immutable afterwards.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config represents the complete loadwatch configuration
type Config struct {
	// LoadThresholdRatio scales the physical core count into the absolute
	// load threshold (threshold = ratio * cores)
	LoadThresholdRatio float64 `env:"LOADWATCH_THRESHOLD_RATIO"`

	// CheckIntervalSeconds is the sampling cadence of the control loop
	CheckIntervalSeconds int `env:"LOADWATCH_CHECK_INTERVAL"`

	// ConsecutiveChecksRequired is how many consecutive low-load samples
	// must be observed before suspend is triggered
	ConsecutiveChecksRequired int `env:"LOADWATCH_REQUIRED_CHECKS"`

	// LogLevel is the minimum level written to the log stream
	LogLevel string `env:"LOADWATCH_LOG_LEVEL"`

	// LogFilePath is the persistent log destination
	LogFilePath string `env:"LOADWATCH_LOG_FILE"`

	// StateDir holds the status file and the suspend override marker
	StateDir string `env:"LOADWATCH_STATE_DIR"`

	// DryRun disables the actual suspend invocation and the root
	// privilege requirement
	DryRun bool `env:"LOADWATCH_DRY_RUN"`

	// OverrideFilePath is a marker file that suppresses suspension while
	// it exists; empty means <StateDir>/suspend_override
	OverrideFilePath string `env:"LOADWATCH_OVERRIDE_FILE"`

	// CheckInhibitors enables the systemd inhibitor check before suspend
	CheckInhibitors bool `env:"LOADWATCH_CHECK_INHIBITORS"`
}

// Load builds the configuration from defaults and environment overrides
func Load() (Config, error) {
	cfg := DefaultConfig()

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.OverrideFilePath == "" {
		cfg.OverrideFilePath = filepath.Join(cfg.StateDir, "suspend_override")
	}

	if validationErrors := cfg.Validate(); len(validationErrors) > 0 {
		return cfg, fmt.Errorf("config.validation.error: %v", formatValidationErrors(validationErrors))
	}

	return cfg, nil
}

// StatusFilePath returns the path of the status JSON inside the state dir
func (c Config) StatusFilePath() string {
	return filepath.Join(c.StateDir, "status.json")
}

// defaultStateDir picks a writable state directory for the current user
func defaultStateDir() string {
	if os.Geteuid() == 0 {
		return "/var/lib/loadwatch"
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "loadwatch")
	}
	return filepath.Join(os.TempDir(), "loadwatch")
}

// defaultLogFilePath picks a writable log destination for the current user
func defaultLogFilePath() string {
	if os.Geteuid() == 0 {
		return "/var/log/loadwatch.log"
	}
	return filepath.Join(defaultStateDir(), "loadwatch.log")
}

// formatValidationErrors formats validation errors for display
func formatValidationErrors(errors []ValidationError) string {
	if len(errors) == 0 {
		return ""
	}
	if len(errors) == 1 {
		return errors[0].Error()
	}
	result := fmt.Sprintf("%d validation errors:\n", len(errors))
	for _, err := range errors {
		result += "  - " + err.Error() + "\n"
	}
	return result
}
