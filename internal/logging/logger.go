package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Logger provides component-prefixed key/value logging for the service.
type Logger struct {
	component string
	kv        []interface{}
	logger    *log.Logger
}

// NewLogger creates a new logger for a named component.
func NewLogger(component string) *Logger {
	return &Logger{
		component: component,
		logger:    log.New(os.Stdout, fmt.Sprintf("[%s] ", component), log.LstdFlags),
	}
}

// With returns a child logger carrying the given key-value pairs on every
// message it emits. The parent is untouched.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		component: l.component,
		kv:        append(append([]interface{}{}, l.kv...), keysAndValues...),
		logger:    l.logger,
	}
}

// Info logs an informational message with key-value pairs.
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.logWithKV("INFO", msg, keysAndValues...)
}

// Warn logs a warning message with key-value pairs.
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.logWithKV("WARN", msg, keysAndValues...)
}

// Error logs an error message with key-value pairs.
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.logWithKV("ERROR", msg, keysAndValues...)
}

// Debug logs a debug message with key-value pairs.
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.logWithKV("DEBUG", msg, keysAndValues...)
}

func (l *Logger) logWithKV(level, msg string, keysAndValues ...interface{}) {
	var sb strings.Builder
	pairs := append(append([]interface{}{}, l.kv...), keysAndValues...)
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", pairs[i], pairs[i+1])
	}
	l.logger.Printf("[%s] %s%s", level, msg, sb.String())
}
