package config

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		LoadThresholdRatio:        0.5,
		CheckIntervalSeconds:      300, // 5 minutes
		ConsecutiveChecksRequired: 3,
		LogLevel:                  "info",
		LogFilePath:               defaultLogFilePath(),
		StateDir:                  defaultStateDir(),
		DryRun:                    false,
		OverrideFilePath:          "", // derived from StateDir in Load
		CheckInhibitors:           true,
	}
}
