package optio

import (
	"fmt"
	stdio "io"
	"strings"
	"time"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarning
	LevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogFormat defines the prefix placed before each message
type LogFormat int

const (
	LogFormatPlain   LogFormat = iota // no prefix
	LogFormatTagged                   // [INFO] [WARN] [ERROR] [DEBUG]
	LogFormatSymbols                  // ◆ ▲ ✗ ●
)

// Logger writes leveled messages through an IOManager.
type Logger struct {
	io           *IOManager
	format       LogFormat
	minLevel     LogLevel
	withTime     bool
	timeFormat   string
	errorsStderr bool
	theme        Theme
}

// NewLogger creates a new logger bound to the given IOManager
func NewLogger(io *IOManager) *Logger {
	return &Logger{
		io:           io,
		format:       LogFormatPlain,
		minLevel:     LevelInfo,
		errorsStderr: true,
		timeFormat:   "15:04:05",
		theme:        DefaultTheme(),
	}
}

// WithFormat sets the log format and returns the logger for chaining
func (l *Logger) WithFormat(format LogFormat) *Logger { l.format = format; return l }

// WithLevel drops messages below level.
func (l *Logger) WithLevel(level LogLevel) *Logger { l.minLevel = level; return l }

// WithTimestamp enables or disables timestamp in log output
func (l *Logger) WithTimestamp(enabled bool) *Logger { l.withTime = enabled; return l }

// ErrorsToStderr controls whether errors and warnings go to stderr
func (l *Logger) ErrorsToStderr(enabled bool) *Logger { l.errorsStderr = enabled; return l }

// WithTheme sets a custom theme for semantic colors
func (l *Logger) WithTheme(theme Theme) *Logger { l.theme = theme; return l }

// Log outputs a message at the specified level
func (l *Logger) Log(level LogLevel, format string, args ...any) {
	if level < l.minLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	w := l.selectWriter(level)
	fmt.Fprintln(w, l.formatMessage(w, level, msg))
}

func (l *Logger) formatMessage(w stdio.Writer, level LogLevel, msg string) string {
	if strings.TrimSpace(msg) == "" {
		return msg
	}
	var parts []string
	if prefix := l.prefix(level); prefix != "" {
		parts = append(parts, prefix)
	}
	if l.withTime {
		parts = append(parts, "["+time.Now().Format(l.timeFormat)+"]")
	}
	parts = append(parts, msg)
	return l.styleFor(level).SprintFor(l.io, w, strings.Join(parts, " "))
}

func (l *Logger) prefix(level LogLevel) string {
	switch l.format {
	case LogFormatTagged:
		return "[" + level.String() + "]"
	case LogFormatSymbols:
		switch level {
		case LevelDebug:
			return "●"
		case LevelInfo:
			return "◆"
		case LevelWarning:
			return "▲"
		case LevelError:
			return "✗"
		}
	case LogFormatPlain:
	}
	return ""
}

func (l *Logger) styleFor(level LogLevel) Style {
	switch level {
	case LevelDebug:
		return l.theme.Debug
	case LevelInfo:
		return l.theme.Info
	case LevelWarning:
		return l.theme.Warning
	case LevelError:
		return l.theme.Error
	default:
		return nil
	}
}

// selectWriter chooses stdout or stderr based on log level and configuration
func (l *Logger) selectWriter(level LogLevel) stdio.Writer {
	if l.errorsStderr && level >= LevelWarning {
		return l.io.Err()
	}
	return l.io.Out()
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...any) { l.Log(LevelDebug, format, args...) }

// Info logs an informational message
func (l *Logger) Info(format string, args ...any) { l.Log(LevelInfo, format, args...) }

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...any) { l.Log(LevelWarning, format, args...) }

// Error logs an error message
func (l *Logger) Error(format string, args ...any) { l.Log(LevelError, format, args...) }
