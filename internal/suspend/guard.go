package suspend

import (
	"os"
	"strings"

	"loadwatch/internal/logging"
)

// Guard reasons reported by Blocked
const (
	ReasonOverrideFile = "override_file"
	ReasonInhibitors   = "inhibitors"
)

// Guard evaluates the optional policy checks immediately before a committed
// suspend. A blocked suspend is skipped, not failed; the hysteresis counter
// is untouched by the guard.
type Guard struct {
	logger          *logging.Logger
	overridePath    string
	checkInhibitors bool
	runner          commandRunner
}

// NewGuard creates a suspend guard. An empty overridePath disables the
// override-file check.
func NewGuard(logger *logging.Logger, overridePath string, checkInhibitors bool) *Guard {
	return &Guard{
		logger:          logger,
		overridePath:    overridePath,
		checkInhibitors: checkInhibitors,
		runner:          runCommand,
	}
}

// Blocked reports whether the suspend should be suppressed and why
func (g *Guard) Blocked() (bool, string) {
	if g.overridePath != "" {
		if _, err := os.Stat(g.overridePath); err == nil {
			g.logger.Warn("Suspend suppressed by override file", map[string]interface{}{
				"path": g.overridePath,
			})
			return true, ReasonOverrideFile
		}
	}

	if g.checkInhibitors {
		inhibitors, err := g.listInhibitors()
		if err != nil {
			// An unreadable inhibitor list must not block suspension
			g.logger.Warn("Failed to check inhibitors", map[string]interface{}{
				"error": err.Error(),
			})
		} else if len(inhibitors) > 0 {
			g.logger.Warn("Suspend suppressed by active inhibitors", map[string]interface{}{
				"inhibitors": strings.Join(inhibitors, ","),
			})
			return true, ReasonInhibitors
		}
	}

	return false, ""
}

// listInhibitors queries systemd for active sleep/shutdown inhibitors
func (g *Guard) listInhibitors() ([]string, error) {
	output, err := g.runner("systemd-inhibit", "--list", "--no-pager", "--no-legend")
	if err != nil {
		return nil, err
	}
	return parseInhibitors(string(output)), nil
}

// parseInhibitors extracts the names of sleep/shutdown inhibitors from
// systemd-inhibit list output
func parseInhibitors(output string) []string {
	inhibitors := make([]string, 0)

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if !strings.Contains(line, "sleep") && !strings.Contains(line, "shutdown") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 0 {
			inhibitors = append(inhibitors, fields[0])
		}
	}

	return inhibitors
}
