// Package logging provides the levelled, component-scoped logger used across
// koru. Messages go to the commonlog backend configured at startup.
package logging

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple" // registers the default backend
)

// Level represents the severity level of a log message.
type Level int

const (
	// LevelDebug is for detailed debugging information.
	LevelDebug Level = iota
	// LevelInfo is for general informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level. Unknown names map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// verbosity maps a level to commonlog's verbosity scale.
func (l Level) verbosity() int {
	switch l {
	case LevelDebug:
		return 2
	case LevelWarn:
		return -1
	case LevelError:
		return -2
	default:
		return 1
	}
}

var configureOnce sync.Once

// Configure sets up the backend once per process. An empty path logs to stderr.
func Configure(level Level, path string) {
	configureOnce.Do(func() {
		if path == "" {
			commonlog.Configure(level.verbosity(), nil)
			return
		}
		commonlog.Configure(level.verbosity(), &path)
	})
}

// Logger writes messages for one component with a fixed set of fields.
type Logger struct {
	name     string
	backend  commonlog.Logger
	fields   []any
	disabled bool
}

// New returns the logger for component name.
func New(name string) *Logger {
	return &Logger{name: name, backend: commonlog.GetLogger("koru."+name)}
}

// Discard returns a logger that drops every message.
func Discard() *Logger {
	return &Logger{disabled: true}
}

// Name returns the component name.
func (l *Logger) Name() string { return l.name }

// WithComponent returns a logger for a sub-component, keeping fields.
func (l *Logger) WithComponent(component string) *Logger {
	if l.disabled {
		return l
	}
	name := component
	if l.name != "" {
		name = l.name + "." + component
	}
	return &Logger{
		name:    name,
		backend: commonlog.GetLogger("koru."+name),
		fields:  l.fields,
	}
}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value any) *Logger {
	fields := make([]any, 0, len(l.fields)+2)
	fields = append(fields, l.fields...)
	fields = append(fields, key, value)
	return &Logger{name: l.name, backend: l.backend, fields: fields, disabled: l.disabled}
}

// WithFields returns a new logger with the given fields added.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	out := l
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		out = out.WithField(k, fields[k])
	}
	return out
}

// Fields returns the key/value pairs attached to every message.
func (l *Logger) Fields() []any {
	return append([]any(nil), l.fields...)
}

// Debugf logs a debug message.
func (l *Logger) Debugf(format string, args ...any) {
	if l.enabled(commonlog.Debug) {
		l.backend.Debug(fmt.Sprintf(format, args...), l.fields...)
	}
}

// Infof logs an info message.
func (l *Logger) Infof(format string, args ...any) {
	if l.enabled(commonlog.Info) {
		l.backend.Info(fmt.Sprintf(format, args...), l.fields...)
	}
}

// Warnf logs a warning message.
func (l *Logger) Warnf(format string, args ...any) {
	if l.enabled(commonlog.Warning) {
		l.backend.Warning(fmt.Sprintf(format, args...), l.fields...)
	}
}

// Errorf logs an error message.
func (l *Logger) Errorf(format string, args ...any) {
	if l.enabled(commonlog.Error) {
		l.backend.Error(fmt.Sprintf(format, args...), l.fields...)
	}
}

func (l *Logger) enabled(level commonlog.Level) bool {
	return l != nil && !l.disabled && l.backend != nil && l.backend.AllowLevel(level)
}
