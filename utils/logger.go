package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Level is the minimum severity a Logger writes.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to a Level.
// Unknown values fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Logger provides leveled logging for the collector run.
// INFO, WARN and DEBUG go to the out writer, ERROR goes to the err writer.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger

	level Level
	color bool
	now   func() time.Time
}

// NewLogger creates a Logger writing to stdout/stderr at LevelInfo.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, os.Stderr, LevelInfo, true)
}

// NewLoggerTo creates a Logger with explicit destinations, level and colour mode.
func NewLoggerTo(out, errOut io.Writer, level Level, color bool) *Logger {
	flags := 0
	return &Logger{
		info:  log.New(out, "", flags),
		warn:  log.New(out, "", flags),
		err:   log.New(errOut, "", flags),
		debug: log.New(out, "", flags),
		level: level,
		color: color,
		now:   time.Now,
	}
}

// SetLevel changes the minimum level written.
func (l *Logger) SetLevel(level Level) { l.level = level }

func (l *Logger) timestamp() string {
	return l.now().Format("2006-01-02 15:04:05")
}

func (l *Logger) tag(name, ansi string) string {
	if !l.color {
		return fmt.Sprintf("%-5s", name)
	}
	return fmt.Sprintf("\033[%sm%-5s\033[0m", ansi, name)
}

func (l *Logger) write(dst *log.Logger, level Level, tag, format string, args []any) {
	if level < l.level {
		return
	}
	dst.Printf("[%s] %s %s\n", l.timestamp(), tag, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...any) {
	l.write(l.info, LevelInfo, l.tag("INFO", "32"), format, args)
}

func (l *Logger) Warn(format string, args ...any) {
	l.write(l.warn, LevelWarn, l.tag("WARN", "33"), format, args)
}

func (l *Logger) Error(format string, args ...any) {
	l.write(l.err, LevelError, l.tag("ERROR", "31"), format, args)
}

func (l *Logger) Debug(format string, args ...any) {
	l.write(l.debug, LevelDebug, l.tag("DEBUG", "36"), format, args)
}

// Discard returns a Logger that writes nothing. Handy in tests.
func Discard() *Logger {
	return NewLoggerTo(io.Discard, io.Discard, LevelError+1, false)
}
