// Package agent runs the control loop: sample load, evaluate against the
// threshold, feed the hysteresis counter, and suspend when a full streak of
// low-load checks has accumulated.
package agent

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loadwatch/internal/config"
	"loadwatch/internal/idle"
	"loadwatch/internal/logging"
	"loadwatch/internal/metrics"
	"loadwatch/internal/state"
	"loadwatch/internal/suspend"
)

// LoadSampler reads the current load metric
type LoadSampler interface {
	Sample() (float64, error)
}

// Suspender invokes the host suspend action
type Suspender interface {
	Suspend() error
}

// SuspendGuard decides whether a committed suspend should be suppressed
type SuspendGuard interface {
	Blocked() (bool, string)
}

// StatusSink receives the per-tick status snapshot
type StatusSink interface {
	Save(state.Status) error
}

// Agent owns the control loop and its single piece of mutable state, the
// hysteresis counter. Exactly one goroutine runs the loop; the threshold
// and interval are fixed before it starts.
type Agent struct {
	logger    *logging.Logger
	sampler   LoadSampler
	suspender Suspender
	guard     SuspendGuard
	status    StatusSink
	counter   *idle.Counter
	threshold float64
	interval  time.Duration
	suspends  int
}

// New resolves the CPU topology, derives the load threshold and wires the
// control loop. Topology read failure is returned to the caller and treated
// as fatal.
func New(cfg config.Config, logger *logging.Logger) (*Agent, error) {
	cores, err := metrics.ResolvePhysicalCores(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve CPU topology: %w", err)
	}

	threshold := idle.ComputeThreshold(cfg.LoadThresholdRatio, cores)

	logger.Info("Derived load threshold", map[string]interface{}{
		"physical_cores":  cores,
		"threshold_ratio": cfg.LoadThresholdRatio,
		"threshold":       threshold,
	})

	return &Agent{
		logger:    logger,
		sampler:   metrics.NewLoadSampler(logger),
		suspender: suspend.NewExecutor(logger, cfg.DryRun),
		guard:     suspend.NewGuard(logger, cfg.OverrideFilePath, cfg.CheckInhibitors),
		status:    state.NewManager(cfg.StatusFilePath(), logger),
		counter:   idle.NewCounter(cfg.ConsecutiveChecksRequired, logger),
		threshold: threshold,
		interval:  time.Duration(cfg.CheckIntervalSeconds) * time.Second,
	}, nil
}

// Threshold returns the absolute load threshold of this loop
func (a *Agent) Threshold() float64 {
	return a.threshold
}

// Run executes the control loop until a fatal error occurs or the process
// receives a termination signal. There is no normal completion; a nil
// return means an external signal stopped the loop.
func (a *Agent) Run() error {
	a.logger.Info("Load monitor started", map[string]interface{}{
		"pid":       os.Getpid(),
		"interval":  a.interval.String(),
		"threshold": a.threshold,
		"required":  a.counter.Required(),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// First check runs immediately, then on the configured cadence
	if err := a.tick(); err != nil {
		return err
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigChan:
			a.logger.Info("Received signal, stopping", map[string]interface{}{
				"signal": sig.String(),
			})
			return nil

		case <-ticker.C:
			if err := a.tick(); err != nil {
				return err
			}
		}
	}
}

// tick performs one iteration: sample, evaluate, count, maybe suspend. Any
// returned error is fatal to the loop.
func (a *Agent) tick() error {
	sample, err := a.sampler.Sample()
	if err != nil {
		// No safe default exists for a failed read; assuming "low" could
		// suspend a busy host, assuming "high" silently disables the daemon.
		a.logger.Error("Failed to sample load average", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("load sample failed: %w", err)
	}

	low := idle.IsLow(sample, a.threshold)

	a.logger.Info("Load check", map[string]interface{}{
		"load":      sample,
		"threshold": a.threshold,
		"low":       low,
	})

	if commit := a.counter.Observe(low); commit {
		if err := a.commitSuspend(); err != nil {
			return err
		}
	}

	a.writeStatus(sample, low)
	return nil
}

// commitSuspend acts on a commit signal from the counter. The counter is
// reset once the commit has been acted upon (suspend done or suppressed),
// so a fresh full streak is required after resume. On suspend failure the
// counter is left untouched and the error terminates the process.
func (a *Agent) commitSuspend() error {
	a.logger.Info("Low-load streak complete, suspending", map[string]interface{}{
		"required": a.counter.Required(),
	})

	if blocked, reason := a.guard.Blocked(); blocked {
		a.logger.Warn("Suspend suppressed", map[string]interface{}{
			"reason": reason,
		})
		a.counter.Reset()
		return nil
	}

	if err := a.suspender.Suspend(); err != nil {
		a.logger.Error("Suspend invocation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("suspend failed: %w", err)
	}

	a.suspends++
	a.counter.Reset()
	return nil
}

// writeStatus persists the per-tick snapshot; failures are logged but never
// interrupt the loop.
func (a *Agent) writeStatus(sample float64, low bool) {
	if a.status == nil {
		return
	}

	err := a.status.Save(state.Status{
		Timestamp: time.Now().UTC(),
		Load:      sample,
		Threshold: a.threshold,
		LowLoad:   low,
		Streak:    a.counter.Count(),
		Required:  a.counter.Required(),
		Suspends:  a.suspends,
	})
	if err != nil {
		a.logger.Warn("Failed to write status snapshot", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
