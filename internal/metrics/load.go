// Package metrics reads the host metrics the suspend decision is based on:
// the system load average and the physical CPU topology.
package metrics

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/load"

	"loadwatch/internal/logging"
)

// LoadSampler reads the system load average
type LoadSampler struct {
	logger *logging.Logger
}

// NewLoadSampler creates a new load sampler
func NewLoadSampler(logger *logging.Logger) *LoadSampler {
	return &LoadSampler{logger: logger}
}

// Sample performs a fresh read of the 5-minute load average. No caching:
// every call hits the OS. A read failure is returned to the caller; there
// is no safe default for a metric that drives a power-state decision.
func (s *LoadSampler) Sample() (float64, error) {
	avg, err := load.Avg()
	if err != nil {
		return 0, fmt.Errorf("failed to read load average: %w", err)
	}

	s.logger.Debug("Sampled load average", map[string]interface{}{
		"load1":  avg.Load1,
		"load5":  avg.Load5,
		"load15": avg.Load15,
	})

	return avg.Load5, nil
}
