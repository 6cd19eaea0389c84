// Package logger provides the leveled logging used across the inspector.
package logger

import (
	"fmt"
	"log"
	"strings"
)

// LogLevel - log level type
type LogLevel int

const (
	// LogDebug - DEBUG log level
	LogDebug LogLevel = iota

	// LogInfo - INFO log level
	LogInfo

	// LogError - ERROR log level (does not call os.Exit!)
	LogError
)

var logLevelPrefix = map[LogLevel]string{
	LogDebug: "DEBUG",
	LogInfo:  "INFO",
	LogError: "ERROR",
}

// ILogger - Generic logger interface
type ILogger interface {
	Printf(level LogLevel, format string, a ...interface{})
	Debugf(format string, a ...interface{})
	Infof(format string, a ...interface{})
	Errorf(format string, a ...interface{})
}

// ParseLogLevel maps a config string to a level, defaulting to info
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogDebug
	case "error":
		return LogError
	default:
		return LogInfo
	}
}

// StdErrLogger writes through the standard log package, dropping messages below its level
type StdErrLogger struct {
	logLevel LogLevel
}

// NewStdErrLogger creates a logger at the given level
func NewStdErrLogger(level LogLevel) *StdErrLogger {
	return &StdErrLogger{logLevel: level}
}

func (l *StdErrLogger) Printf(level LogLevel, format string, a ...interface{}) {
	if level < l.logLevel {
		return
	}
	log.Println(logLevelPrefix[level] + ": " + fmt.Sprintf(format, a...))
}
func (l *StdErrLogger) Debugf(format string, a ...interface{}) {
	l.Printf(LogDebug, format, a...)
}
func (l *StdErrLogger) Infof(format string, a ...interface{}) {
	l.Printf(LogInfo, format, a...)
}
func (l *StdErrLogger) Errorf(format string, a ...interface{}) {
	l.Printf(LogError, format, a...)
}

func (l *StdErrLogger) SetLogLevel(level LogLevel) {
	l.logLevel = level
}
func (l *StdErrLogger) GetLogLevel() LogLevel {
	return l.logLevel
}

// NullLogger - For mocking out in tests
type NullLogger struct {
}

func (l *NullLogger) Printf(level LogLevel, format string, a ...interface{}) {}
func (l *NullLogger) Debugf(format string, a ...interface{})                 {}
func (l *NullLogger) Infof(format string, a ...interface{})                  {}
func (l *NullLogger) Errorf(format string, a ...interface{})                 {}
