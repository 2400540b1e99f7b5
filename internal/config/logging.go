package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/web3twenty/3twenty-wallet/internal/fileutil"
)

// LogLevel is the logging verbosity.
type LogLevel int

const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelDebug
)

// ParseLogLevel maps a config string to a level. Unknown strings read as
// error so a typo never silences the log.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LogLevelOff
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelError
	}
}

func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "off"
	case LogLevelDebug:
		return "debug"
	default:
		return "error"
	}
}

// Logger appends leveled lines to a log file. A nil or off logger discards
// everything; methods are safe on either.
type Logger struct {
	mu    sync.Mutex
	level LogLevel
	out   io.WriteCloser
}

// NewLogger opens the log file for appending. An off level or empty path
// yields a discarding logger.
func NewLogger(level LogLevel, path string) (*Logger, error) {
	if level == LogLevelOff || path == "" {
		return &Logger{level: LogLevelOff}, nil
	}

	if after, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, after)
	}

	if err := fileutil.EnsureDir(path, 0o750); err != nil {
		return nil, err
	}

	out, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- log path comes from validated config
	if err != nil {
		return nil, err
	}

	return &Logger{level: level, out: out}, nil
}

// NullLogger returns a logger that discards all output.
func NullLogger() *Logger {
	return &Logger{level: LogLevelOff}
}

// Level returns the configured level.
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Debug writes a debug-level line.
func (l *Logger) Debug(format string, args ...any) {
	l.write(LogLevelDebug, format, args...)
}

// Error writes an error-level line.
func (l *Logger) Error(format string, args ...any) {
	l.write(LogLevelError, format, args...)
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.out == nil {
		return nil
	}
	err := l.out.Close()
	l.out = nil
	return err
}

func (l *Logger) write(level LogLevel, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.out == nil || level > l.level {
		return
	}

	stamp := time.Now().Format("2006-01-02 15:04:05.000")
	_, _ = fmt.Fprintf(l.out, "%s [%s] %s\n", stamp, strings.ToUpper(level.String()), fmt.Sprintf(format, args...))
}
