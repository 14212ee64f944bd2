package service

import (
	"log"
	"strings"
)

var levels = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Logger provides structured logging for a pipeline run
type Logger struct {
	runID string
	level int
	out   *log.Logger
}

// NewLogger creates a logger tagged with the run ID. Messages below level
// are dropped.
func NewLogger(runID, level string) *Logger {
	lv, ok := levels[strings.ToLower(level)]
	if !ok {
		lv = levels["info"]
	}
	return &Logger{runID: runID, level: lv, out: log.Default()}
}

func (l *Logger) logf(level, operation, format string, args ...interface{}) {
	if levels[level] < l.level {
		return
	}
	l.out.Printf("[%s] run_id=%s operation=%s "+format, append([]interface{}{level, l.runID, operation}, args...)...)
}

// LogError logs an error with context
func (l *Logger) LogError(operation string, err error) {
	l.logf("error", operation, "error=%v", err)
}

// LogInfof logs a formatted info message with context
func (l *Logger) LogInfof(operation string, format string, args ...interface{}) {
	l.logf("info", operation, format, args...)
}

// LogWarnf logs a formatted warning with context
func (l *Logger) LogWarnf(operation string, format string, args ...interface{}) {
	l.logf("warn", operation, format, args...)
}

// LogDebugf logs a formatted debug message with context
func (l *Logger) LogDebugf(operation string, format string, args ...interface{}) {
	l.logf("debug", operation, format, args...)
}
