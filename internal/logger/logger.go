// Package logger provides leveled, key/value structured logging shared by
// the relay server, the bridge collector, and the terminal monitor.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	ERROR Level = iota
	WARN
	INFO
	DEBUG
)

var levelNames = map[Level]string{
	ERROR: "ERROR",
	WARN:  "WARN",
	INFO:  "INFO",
	DEBUG: "DEBUG",
}

// Entry is a single recorded log line.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Context   map[string]interface{}
}

// Logger writes leveled entries to an output writer and keeps a bounded
// in-memory ring of recent entries for diagnostics.
type Logger struct {
	mu            sync.RWMutex
	level         Level
	out           io.Writer
	buffer        []Entry
	maxBufferSize int
}

// New creates a Logger writing to stderr.
func New(level Level, maxBufferSize int) *Logger {
	return &Logger{
		level:         level,
		out:           os.Stderr,
		buffer:        make([]Entry, 0, maxBufferSize),
		maxBufferSize: maxBufferSize,
	}
}

// SetOutput redirects log output, primarily for tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// SetLevel changes the current log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// Error logs an error level message.
func (l *Logger) Error(msg string, context ...interface{}) {
	l.log(ERROR, msg, context...)
}

// Warn logs a warning level message.
func (l *Logger) Warn(msg string, context ...interface{}) {
	l.log(WARN, msg, context...)
}

// Info logs an info level message.
func (l *Logger) Info(msg string, context ...interface{}) {
	l.log(INFO, msg, context...)
}

// Debug logs a debug level message.
func (l *Logger) Debug(msg string, context ...interface{}) {
	l.log(DEBUG, msg, context...)
}

func (l *Logger) log(level Level, msg string, context ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level > l.level {
		return
	}

	// Context arrives as alternating key/value pairs.
	ctx := make(map[string]interface{})
	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			ctx[key] = context[i+1]
		}
	}

	entry := Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
		Context:   ctx,
	}

	if len(l.buffer) >= l.maxBufferSize {
		l.buffer = l.buffer[1:]
	}
	l.buffer = append(l.buffer, entry)

	if l.out != nil {
		fmt.Fprintln(l.out, formatEntry(entry))
	}
}

// GetBuffer returns a copy of the in-memory entry ring.
func (l *Logger) GetBuffer() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	buffer := make([]Entry, len(l.buffer))
	copy(buffer, l.buffer)
	return buffer
}

func formatEntry(entry Entry) string {
	timestamp := entry.Timestamp.Format("2006-01-02T15:04:05-07:00")
	line := fmt.Sprintf("%s [%s] %s", timestamp, levelNames[entry.Level], entry.Message)
	for k, v := range entry.Context {
		line += fmt.Sprintf(" %s=%v", k, v)
	}
	return line
}

// ParseLevel converts a string to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch s {
	case "error", "ERROR":
		return ERROR
	case "warn", "WARN":
		return WARN
	case "debug", "DEBUG":
		return DEBUG
	default:
		return INFO
	}
}

// LevelName returns the textual name of a level.
func LevelName(level Level) string {
	return levelNames[level]
}
