package logger

import (
	"fmt"
	"log"
	"strings"
	"sync"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// Logger is a leveled logger writing through the stdlib log package.
type Logger struct {
	mu    sync.RWMutex
	level Level
}

var (
	std  *Logger
	once sync.Once
)

func defaultLogger() *Logger {
	once.Do(func() {
		std = &Logger{level: INFO}
	})
	return std
}

// ParseLevel converts a level name to a Level, defaulting to INFO.
func ParseLevel(level string) Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// SetLevel sets the global log level.
func SetLevel(level string) {
	l := defaultLogger()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = ParseLevel(level)
}

func (l *Logger) enabled(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

func emit(tag string, format string, v ...interface{}) {
	log.Printf("[%s] %s", tag, fmt.Sprintf(format, v...))
}

// Debug logs debug level messages.
func Debug(format string, v ...interface{}) {
	if defaultLogger().enabled(DEBUG) {
		emit("DEBUG", format, v...)
	}
}

// Info logs info level messages.
func Info(format string, v ...interface{}) {
	if defaultLogger().enabled(INFO) {
		emit("INFO", format, v...)
	}
}

// Warn logs warning level messages.
func Warn(format string, v ...interface{}) {
	if defaultLogger().enabled(WARN) {
		emit("WARN", format, v...)
	}
}

// Error logs error level messages.
func Error(format string, v ...interface{}) {
	if defaultLogger().enabled(ERROR) {
		emit("ERROR", format, v...)
	}
}
