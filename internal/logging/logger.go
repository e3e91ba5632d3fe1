package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Level represents log severity
type Level string

const (
	// LevelDebug indicates fine-grained diagnostic logging.
	LevelDebug Level = "debug"
	// LevelInfo indicates informational logging.
	LevelInfo Level = "info"
	// LevelWarn indicates non-fatal warnings.
	LevelWarn Level = "warn"
	// LevelError indicates error logging requiring attention.
	LevelError Level = "error"
)

// prefixes maps levels to the tag written into each log line
var prefixes = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARNING",
	LevelError: "ERROR",
}

// ParseLevel converts a level name into a Level, defaulting to info
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes timestamped, line-oriented log output. Every line is
// duplicated to the persistent log file (when configured) and to the
// console; warning and error lines go to stderr, the rest to stdout.
type Logger struct {
	minLevel Level
	stdout   io.Writer
	stderr   io.Writer
	file     io.Writer
	logFile  *os.File
}

// NewLogger creates a new logger writing to stdout/stderr only
func NewLogger(minLevel Level) *Logger {
	return &Logger{
		minLevel: minLevel,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// NewFileLogger creates a logger that duplicates every line to a log file
// in addition to the console streams
func NewFileLogger(minLevel Level, logFilePath string) (*Logger, error) {
	logDir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFile, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &Logger{
		minLevel: minLevel,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		file:     logFile,
		logFile:  logFile,
	}, nil
}

// Close closes the log file if open
func (l *Logger) Close() error {
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

// Log writes a single log line in the form
// "<timestamp> - <PREFIX>: <message> key=value ..."
func (l *Logger) Log(level Level, message string, payload map[string]interface{}) {
	if !l.shouldLog(level) {
		return
	}

	line := fmt.Sprintf("%s - %s: %s%s",
		time.Now().Format("2006-01-02 15:04:05"),
		prefixes[level],
		message,
		formatPayload(payload),
	)

	console := l.stdout
	if level == LevelWarn || level == LevelError {
		console = l.stderr
	}
	if console == nil {
		console = os.Stderr
	}

	if _, err := fmt.Fprintln(console, line); err != nil && console != os.Stderr {
		fmt.Fprintf(os.Stderr, "Failed to write log line: %v\n", err)
	}

	if l.file != nil {
		if _, err := fmt.Fprintln(l.file, line); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write log file: %v\n", err)
		}
	}
}

// Debug logs a debug-level line
func (l *Logger) Debug(message string, payload map[string]interface{}) {
	l.Log(LevelDebug, message, payload)
}

// Info logs an info-level line
func (l *Logger) Info(message string, payload map[string]interface{}) {
	l.Log(LevelInfo, message, payload)
}

// Warn logs a warn-level line
func (l *Logger) Warn(message string, payload map[string]interface{}) {
	l.Log(LevelWarn, message, payload)
}

// Error logs an error-level line
func (l *Logger) Error(message string, payload map[string]interface{}) {
	l.Log(LevelError, message, payload)
}

// shouldLog determines if a log level should be output
func (l *Logger) shouldLog(level Level) bool {
	levels := map[Level]int{
		LevelDebug: 0,
		LevelInfo:  1,
		LevelWarn:  2,
		LevelError: 3,
	}
	return levels[level] >= levels[l.minLevel]
}

// formatPayload renders the payload as a sorted " key=value" suffix
func formatPayload(payload map[string]interface{}) string {
	if len(payload) == 0 {
		return ""
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, payload[k])
	}
	return b.String()
}
