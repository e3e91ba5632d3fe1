// Package suspend invokes the host suspend-to-RAM facility and evaluates
// the guards that can suppress a committed suspend.
package suspend

import (
	"fmt"
	"os/exec"

	"loadwatch/internal/logging"
)

// commandRunner abstracts command execution so tests can intercept it
type commandRunner func(name string, args ...string) ([]byte, error)

func runCommand(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// Executor invokes the host suspend action
type Executor struct {
	logger *logging.Logger
	dryRun bool
	runner commandRunner
}

// NewExecutor creates a new suspend executor
func NewExecutor(logger *logging.Logger, dryRun bool) *Executor {
	return &Executor{
		logger: logger,
		dryRun: dryRun,
		runner: runCommand,
	}
}

// Suspend invokes systemctl suspend. The call blocks until the host resumes
// from suspend; returning without error means the host suspended and came
// back. Failure is surfaced to the caller, which treats it as fatal rather
// than retrying against a malfunctioning power-management facility.
func (e *Executor) Suspend() error {
	if e.dryRun {
		e.logger.Info("Suspend skipped (dry-run mode)", nil)
		return nil
	}

	e.logger.Info("Suspending system", nil)

	output, err := e.runner("systemctl", "suspend")
	if err != nil {
		return fmt.Errorf("systemctl suspend failed: %w (output: %s)", err, string(output))
	}

	e.logger.Info("Resumed from suspend", nil)
	return nil
}

// CheckCanSuspend verifies the host suspend facility is available without
// actually suspending. Used at startup; a failure is a fatal startup error.
func (e *Executor) CheckCanSuspend() error {
	if e.dryRun {
		return nil
	}

	if _, err := exec.LookPath("systemctl"); err != nil {
		return fmt.Errorf("systemctl not found: %w", err)
	}

	if _, err := e.runner("systemctl", "can-suspend"); err != nil {
		return fmt.Errorf("suspend not supported by system: %w", err)
	}

	return nil
}
