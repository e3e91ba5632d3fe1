package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"loadwatch/internal/agent"
	"loadwatch/internal/config"
	"loadwatch/internal/diag"
	"loadwatch/internal/idle"
	"loadwatch/internal/logging"
	"loadwatch/internal/metrics"
	"loadwatch/internal/state"
	"loadwatch/internal/suspend"
	"loadwatch/internal/tui"
	"loadwatch/internal/wol"
)

const version = "0.1.0-dev"

func main() {
	command := "run"
	if len(os.Args) > 1 {
		command = strings.ToLower(os.Args[1])
	}

	if handler, ok := commandHandlers()[command]; ok {
		handler()
		return
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
	printUsage()
	os.Exit(1)
}

func commandHandlers() map[string]func() {
	return map[string]func(){
		"run":     runDaemon,
		"check":   runCheck,
		"status":  runStatus,
		"watch":   runWatch,
		"wake":    runWake,
		"diag":    runDiag,
		"version": runVersion,
		"help":    printUsage,
		"--help":  printUsage,
		"-h":      printUsage,
	}
}

func runVersion() {
	fmt.Printf("loadwatch version %s\n", version)
}

// loadConfig loads the configuration or exits with a startup error
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// runDaemon starts the monitoring loop
func runDaemon() {
	cfg := loadConfig()

	logger, err := logging.NewFileLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: log file unavailable, console only: %v\n", err)
		logger = logging.NewLogger(logging.ParseLevel(cfg.LogLevel))
	}
	defer logger.Close()

	if !cfg.DryRun && os.Geteuid() != 0 {
		logger.Error("Insufficient privilege: suspend requires root (set LOADWATCH_DRY_RUN=true to test)", nil)
		os.Exit(1)
	}

	executor := suspend.NewExecutor(logger, cfg.DryRun)
	if err := executor.CheckCanSuspend(); err != nil {
		logger.Error("Suspend facility unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	a, err := agent.New(cfg, logger)
	if err != nil {
		logger.Error("Startup failed", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	if err := a.Run(); err != nil {
		// The fatal cause was already logged by the loop
		os.Exit(1)
	}
}

// runCheck performs a single load check and prints the verdict without
// touching the suspend facility
func runCheck() {
	cfg := loadConfig()
	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel))

	cores, err := metrics.ResolvePhysicalCores(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	threshold := idle.ComputeThreshold(cfg.LoadThresholdRatio, cores)

	sample, err := metrics.NewLoadSampler(logger).Sample()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	verdict := "HIGH"
	if idle.IsLow(sample, threshold) {
		verdict = "low"
	}

	fmt.Printf("Physical cores:  %d\n", cores)
	fmt.Printf("Load threshold:  %.2f (ratio %.2f)\n", threshold, cfg.LoadThresholdRatio)
	fmt.Printf("Load (5 min):    %.2f\n", sample)
	fmt.Printf("Verdict:         %s\n", verdict)
}

// runStatus prints the latest status snapshot written by the daemon
func runStatus() {
	cfg := loadConfig()
	logger := logging.NewLogger(logging.LevelError)

	manager := state.NewManager(cfg.StatusFilePath(), logger)
	if !manager.Exists() {
		fmt.Println("No status available (is the daemon running?)")
		return
	}

	status, err := manager.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	verdict := "HIGH"
	if status.LowLoad {
		verdict = "low"
	}

	fmt.Printf("Last check:      %s\n", status.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Load (5 min):    %.2f (%s)\n", status.Load, verdict)
	fmt.Printf("Load threshold:  %.2f\n", status.Threshold)
	fmt.Printf("Low-load streak: %d/%d\n", status.Streak, status.Required)
	fmt.Printf("Suspends:        %d\n", status.Suspends)
}

// runWatch opens the live status view
func runWatch() {
	cfg := loadConfig()
	logger := logging.NewLogger(logging.LevelError)

	program := tea.NewProgram(tui.NewModel(cfg.StatusFilePath(), logger))
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runWake sends a Wake-on-LAN magic packet to another suspended host
func runWake() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: loadwatch wake <mac-address> [broadcast-address]")
		os.Exit(1)
	}

	cfg := loadConfig()
	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel))

	broadcast := ""
	if len(os.Args) > 3 {
		broadcast = os.Args[3]
	}

	if err := wol.NewSender(logger).SendMagicPacket(os.Args[2], broadcast); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Magic packet sent to %s\n", os.Args[2])
}

// runDiag writes a support bundle with logs, status and host facts
func runDiag() {
	cfg := loadConfig()
	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel))

	outputPath := diag.DefaultOutputPath()
	if len(os.Args) > 2 {
		outputPath = os.Args[2]
	}

	packager := diag.NewPackager(cfg, version, logger)
	if err := packager.CreateBundle(outputPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Support bundle written to %s\n", outputPath)
}

func printUsage() {
	fmt.Println("loadwatch - suspend the host when system load stays low")
	fmt.Println()
	fmt.Println("Usage: loadwatch [command]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run      Run the monitoring daemon (default)")
	fmt.Println("  check    Perform a single load check and print the verdict")
	fmt.Println("  status   Show the latest daemon status snapshot")
	fmt.Println("  watch    Live terminal view of the daemon status")
	fmt.Println("  wake     Send a Wake-on-LAN magic packet to another host")
	fmt.Println("  diag     Write a support bundle (logs, status, host facts)")
	fmt.Println("  version  Show version information")
	fmt.Println("  help     Show this help")
	fmt.Println()
	fmt.Println("Configuration (environment):")
	fmt.Println("  LOADWATCH_THRESHOLD_RATIO   Load threshold per physical core (default 0.5)")
	fmt.Println("  LOADWATCH_CHECK_INTERVAL    Seconds between checks, minimum 10 (default 300)")
	fmt.Println("  LOADWATCH_REQUIRED_CHECKS   Consecutive low checks before suspend (default 3)")
	fmt.Println("  LOADWATCH_LOG_LEVEL         debug, info, warn or error (default info)")
	fmt.Println("  LOADWATCH_LOG_FILE          Persistent log destination")
	fmt.Println("  LOADWATCH_STATE_DIR         Directory for status and override files")
	fmt.Println("  LOADWATCH_OVERRIDE_FILE     Marker file that suppresses suspension")
	fmt.Println("  LOADWATCH_CHECK_INHIBITORS  Check systemd inhibitors before suspend (default true)")
	fmt.Println("  LOADWATCH_DRY_RUN           Log instead of suspending (default false)")
}
