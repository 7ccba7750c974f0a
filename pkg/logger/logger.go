// Package logger provides simple structured logging with levels and optional colors.
// It supports -v (verbose) and --debug flags. In debug mode, logs are also written
// to $HOME/.kernelc/logs/kernelc-YYYY-MM-DD.log for troubleshooting.
//
// Besides the usual levels the logger has a TRACE channel, shown with -v, which
// carries the compiler's stdout. Compiler stderr goes to the ERROR channel.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"
)

// Level represents log severity
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelVerbose
	LevelTrace
	LevelDebug
)

// Logger provides structured logging
type Logger struct {
	mu      sync.Mutex
	level   Level
	output  io.Writer
	file    *os.File
	colors  bool
	timings map[string]time.Time
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// New returns a standalone logger writing to w. It is not installed as the
// package default.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		level:   level,
		output:  w,
		timings: make(map[string]time.Time),
	}
}

// Initialize sets up the global logger
func Initialize(verbose, debug bool) {
	once.Do(func() {
		level := LevelInfo
		if verbose {
			level = LevelTrace
		}
		if debug {
			level = LevelDebug
		}

		defaultLogger = New(os.Stderr, level)
		defaultLogger.colors = isTerminal()

		// Also log to file in debug mode
		if debug {
			logDir := os.ExpandEnv("$HOME/.kernelc/logs")
			_ = os.MkdirAll(logDir, 0o755)
			logFile := filepath.Join(logDir, fmt.Sprintf("kernelc-%s.log", time.Now().Format("2006-01-02")))
			if file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
				defaultLogger.file = file
				Debugf("Logging to %s", logFile)
			}
		}
	})
}

// Default returns the global logger, or a logger that discards everything
// when Initialize has not been called.
func Default() *Logger {
	if defaultLogger != nil {
		return defaultLogger
	}
	return New(io.Discard, LevelError)
}

// Close closes any resources used by the logger
func Close() {
	if defaultLogger != nil && defaultLogger.file != nil {
		_ = defaultLogger.file.Close()
	}
}

// Info logs at info level (always shown)
func Info(msg string) {
	if defaultLogger != nil {
		defaultLogger.log(LevelInfo, msg)
	}
}
func Infof(format string, args ...interface{}) { Info(fmt.Sprintf(format, args...)) }

// Verbose logs at verbose level (shown with -v)
func Verbose(msg string) {
	if defaultLogger != nil {
		defaultLogger.log(LevelVerbose, msg)
	}
}
func Verbosef(format string, args ...interface{}) { Verbose(fmt.Sprintf(format, args...)) }

// Trace logs on the trace channel (shown with -v)
func Trace(msg string) {
	if defaultLogger != nil {
		defaultLogger.log(LevelTrace, msg)
	}
}

// Debug logs at debug level (shown with --debug)
func Debug(msg string) {
	if defaultLogger != nil {
		defaultLogger.log(LevelDebug, msg)
	}
}
func Debugf(format string, args ...interface{}) { Debug(fmt.Sprintf(format, args...)) }

// Warn logs warnings
func Warn(msg string) {
	if defaultLogger != nil {
		defaultLogger.log(LevelWarn, msg)
	}
}
func Warnf(format string, args ...interface{}) { Warn(fmt.Sprintf(format, args...)) }

// Error logs errors (always shown)
func Error(msg string) {
	if defaultLogger != nil {
		defaultLogger.log(LevelError, msg)
	}
}
func Errorf(format string, args ...interface{}) { Error(fmt.Sprintf(format, args...)) }

// Error writes msg on the error channel.
func (l *Logger) Error(msg string) { l.log(LevelError, msg) }

// Trace writes msg on the trace channel.
func (l *Logger) Trace(msg string) { l.log(LevelTrace, msg) }

// Debug writes msg at debug level.
func (l *Logger) Debug(msg string) { l.log(LevelDebug, msg) }

// StartTimer begins timing an operation
func StartTimer(operation string) {
	if defaultLogger != nil && defaultLogger.level >= LevelVerbose {
		defaultLogger.mu.Lock()
		defaultLogger.timings[operation] = time.Now()
		defaultLogger.mu.Unlock()
		Verbosef("⏱  Starting: %s", operation)
	}
}

// EndTimer logs the duration of an operation
func EndTimer(operation string) {
	if defaultLogger != nil && defaultLogger.level >= LevelVerbose {
		defaultLogger.mu.Lock()
		if start, ok := defaultLogger.timings[operation]; ok {
			delete(defaultLogger.timings, operation)
			defaultLogger.mu.Unlock()
			Verbosef("✓ Completed %s in %v", operation, time.Since(start))
		} else {
			defaultLogger.mu.Unlock()
		}
	}
}

var levelStyles = map[Level]struct {
	prefix string
	color  color.Color
}{
	LevelError:   {"ERROR", color.FgRed},
	LevelWarn:    {"WARN", color.FgYellow},
	LevelInfo:    {"INFO", color.FgGreen},
	LevelVerbose: {"VERBOSE", color.FgCyan},
	LevelTrace:   {"TRACE", color.FgBlue},
	LevelDebug:   {"DEBUG", color.FgMagenta},
}

// log writes a log message with level, timestamp and optional caller
func (l *Logger) log(level Level, msg string) {
	if level > l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("15:04:05")
	style := levelStyles[level]
	prefix := style.prefix
	if l.colors {
		prefix = style.color.Sprint(prefix)
	}

	caller := ""
	if level == LevelDebug {
		if _, file, line, ok := runtime.Caller(3); ok {
			caller = fmt.Sprintf(" [%s:%d]", filepath.Base(file), line)
		}
	}

	output := fmt.Sprintf("[%s] %s%s: %s\n", timestamp, prefix, caller, strings.TrimRight(msg, "\n"))

	fmt.Fprint(l.output, output)
	if l.file != nil {
		fmt.Fprint(l.file, output)
	}
}

func isTerminal() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
