package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger provides a unified logging interface for the assistant.

// LogLevel represents log severity levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	// CurrentLevel is the current logging level (default: Info)
	CurrentLevel = LevelInfo

	// stderr keeps log lines off stdio transports
	mu  sync.Mutex
	out io.Writer = os.Stderr
)

// SetOutput redirects log output (useful for tests).
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// Debugf logs a debug message
func Debugf(format string, args ...interface{}) {
	if CurrentLevel > LevelDebug {
		return
	}
	logf(LevelDebug, format, args...)
}

// Infof logs an info message
func Infof(format string, args ...interface{}) {
	if CurrentLevel > LevelInfo {
		return
	}
	logf(LevelInfo, format, args...)
}

// Warnf logs a warning message
func Warnf(format string, args ...interface{}) {
	if CurrentLevel > LevelWarn {
		return
	}
	logf(LevelWarn, format, args...)
}

// Errorf logs an error message
func Errorf(format string, args ...interface{}) {
	logf(LevelError, format, args...)
}

func logf(level LogLevel, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, levelPrefix(level)+format+"\n", args...)
}

// levelPrefix returns the prefix for each log level
func levelPrefix(level LogLevel) string {
	switch level {
	case LevelDebug:
		return "[DEBUG] "
	case LevelInfo:
		return "[INFO] "
	case LevelWarn:
		return "[WARN] "
	case LevelError:
		return "[ERROR] "
	default:
		return "[LOG] "
	}
}

// SetLevel sets the minimum log level
func SetLevel(level LogLevel) {
	CurrentLevel = level
}

// SetLevelByName sets the minimum log level from its name; unknown names
// keep the current level.
func SetLevelByName(name string) {
	switch name {
	case "debug":
		SetLevel(LevelDebug)
	case "info":
		SetLevel(LevelInfo)
	case "warn", "warning":
		SetLevel(LevelWarn)
	case "error":
		SetLevel(LevelError)
	}
}
