// Package logging provides leveled logging for ci-triage.
// Entries go to a console writer (usually stderr) and, optionally, to a log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/runoshun/ci-triage/internal/domain"
)

// LevelTrace is the most verbose level, selected by verbosity 4.
const LevelTrace = slog.LevelDebug - 4

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

var levelColors = map[slog.Level][]color.Attribute{
	LevelTrace:      {color.FgHiBlack},
	slog.LevelDebug: {color.FgCyan},
	slog.LevelInfo:  {color.FgGreen},
	slog.LevelWarn:  {color.FgYellow},
	slog.LevelError: {color.FgRed, color.Bold},
}

// Logger writes formatted entries to a console writer and an optional file.
// Fields are ordered to minimize memory padding.
type Logger struct {
	console io.Writer
	file    *os.File
	scope   string
	mu      sync.Mutex
	level   slog.Level
	colored bool
}

// New creates a Logger writing entries at or above level to console.
// A nil console disables console output.
func New(console io.Writer, level slog.Level) *Logger {
	return &Logger{
		console: console,
		level:   level,
		scope:   NewScope(),
	}
}

// NewScope returns a short random id identifying one invocation in shared log files.
func NewScope() string {
	return uuid.NewString()[:8]
}

// Scope returns the invocation scope written into every entry.
func (l *Logger) Scope() string {
	return l.scope
}

// ColorSupported reports whether colored output is allowed.
// It honors NO_COLOR and follows fatih/color's terminal detection, which
// inspects stdout; console entries go to stderr, which shares the terminal
// in interactive use.
func ColorSupported() bool {
	return !color.NoColor
}

// SetColor enables colored level tags on the console writer.
func (l *Logger) SetColor(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.colored = enabled
}

// OpenFile appends entries to the file at path, creating parent directories.
func (l *Logger) OpenFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	// G302: Log files are append-only and need read access by repository users
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		_ = l.file.Close()
	}
	l.file = f
	return nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromVerbosity maps the -v count to a level:
// 0 error, 1 warn, 2 info, 3 debug, 4 and above trace.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError
	case v == 1:
		return slog.LevelWarn
	case v == 2:
		return slog.LevelInfo
	case v == 3:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// formatLog formats a log entry.
// Format: [2025-12-30 09:32:51] [INFO] [1a2b3c4d] [category] message
func formatLog(t time.Time, levelStr, scope, category, msg string) string {
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelStr,
		scope,
		category,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch level {
	case LevelTrace:
		return "TRACE"
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (l *Logger) log(level slog.Level, category, msg string) {
	if level < l.level {
		return // Skip if below minimum level
	}

	now := time.Now()
	levelStr := levelToString(level)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		_, _ = io.WriteString(l.file, formatLog(now, levelStr, l.scope, category, msg))
	}
	if l.console != nil {
		tag := levelStr
		if attrs, ok := levelColors[level]; ok && l.colored {
			c := color.New(attrs...)
			c.EnableColor()
			tag = c.Sprint(levelStr)
		}
		_, _ = io.WriteString(l.console, formatLog(now, tag, l.scope, category, msg))
	}
}

// Trace logs a trace message.
func (l *Logger) Trace(category, msg string) {
	l.log(LevelTrace, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(category, msg string) {
	l.log(slog.LevelDebug, category, msg)
}

// Info logs an info message.
func (l *Logger) Info(category, msg string) {
	l.log(slog.LevelInfo, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(category, msg string) {
	l.log(slog.LevelWarn, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(category, msg string) {
	l.log(slog.LevelError, category, msg)
}
