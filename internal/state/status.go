// Package state persists a small status snapshot for the status and watch
// commands. The snapshot is observability output only; the control loop
// never reads it back, so no decision state survives a restart.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"loadwatch/internal/fsutil"
	"loadwatch/internal/logging"
)

// Status is the snapshot written after every tick of the control loop
type Status struct {
	// Timestamp is when the snapshot was taken
	Timestamp time.Time `json:"ts"`

	// Load is the 5-minute load average of the last sample
	Load float64 `json:"load5"`

	// Threshold is the absolute load threshold (ratio * physical cores)
	Threshold float64 `json:"threshold"`

	// LowLoad is the verdict of the last sample
	LowLoad bool `json:"low_load"`

	// Streak is the current consecutive low-load count
	Streak int `json:"streak"`

	// Required is the streak length that triggers suspend
	Required int `json:"required"`

	// Suspends counts suspends committed during this process lifetime
	Suspends int `json:"suspends"`
}

// Manager handles status snapshot persistence
type Manager struct {
	filePath string
	logger   *logging.Logger
}

// NewManager creates a new status manager writing to the given file
func NewManager(filePath string, logger *logging.Logger) *Manager {
	return &Manager{
		filePath: filePath,
		logger:   logger,
	}
}

// Save writes the status snapshot atomically (temp file + rename)
func (m *Manager) Save(status Status) error {
	if err := fsutil.EnsureStateDirectory(filepath.Dir(m.filePath)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	if err := fsutil.AtomicWriteFile(m.filePath, data, fsutil.DefaultFilePermissions); err != nil {
		return err
	}

	m.logger.Debug("Status snapshot saved", map[string]interface{}{
		"path":   m.filePath,
		"streak": status.Streak,
	})

	return nil
}

// Load reads the status snapshot from the configured file
func (m *Manager) Load() (Status, error) {
	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Status{}, fmt.Errorf("status file not found: %w", err)
		}
		return Status{}, fmt.Errorf("failed to read status file: %w", err)
	}

	var status Status
	if err := json.Unmarshal(data, &status); err != nil {
		return Status{}, fmt.Errorf("failed to unmarshal status: %w", err)
	}

	return status, nil
}

// Exists checks if the status file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.filePath)
	return err == nil
}
