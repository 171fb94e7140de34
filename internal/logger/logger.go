package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mediabank/internal/constants"
)

const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

var levelOrder = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Logger provides leveled logging with optional file output.
// When a log directory is set, lines are appended to one file per day
// alongside stdout.
type Logger struct {
	mu         sync.Mutex
	level      string
	logDir     string // empty = stdout only
	file       *os.File
	currentDay int // year*1000 + yday, tracks daily rotation
}

// NewLogger creates a logger writing to stdout only.
func NewLogger(level string) *Logger {
	if _, ok := levelOrder[normalizeLevel(level)]; !ok {
		level = LevelDebug
	}
	return &Logger{level: normalizeLevel(level)}
}

func normalizeLevel(level string) string {
	switch level {
	case "debug", LevelDebug:
		return LevelDebug
	case "info", LevelInfo:
		return LevelInfo
	case "warn", LevelWarn:
		return LevelWarn
	case "error", LevelError:
		return LevelError
	}
	return level
}

// SetLogDir enables or changes file logging. Pass an empty string to
// disable file output.
func (l *Logger) SetLogDir(dir string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	l.logDir = dir
	l.currentDay = 0
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, constants.DirPermissions)
}

// SetLevel changes the minimum level. Unknown levels are ignored.
func (l *Logger) SetLevel(level string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := levelOrder[normalizeLevel(level)]; ok {
		l.level = normalizeLevel(level)
	}
}

// Close releases the current log file handle, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(LevelError, format, args...) }

func (l *Logger) log(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if levelOrder[level] < levelOrder[l.level] {
		return
	}

	timestamp := time.Now().Format(constants.LogTimestampFormat)
	line := fmt.Sprintf("[%s] %s | %s\n", level, timestamp, fmt.Sprintf(format, args...))

	fmt.Print(line)

	if l.logDir != "" {
		l.writeToFileLocked(line)
	}
}

// writeToFileLocked appends the line to the current day's file, rotating
// when the day changes. Caller must hold the mutex.
func (l *Logger) writeToFileLocked(line string) {
	day := dayKey(time.Now())
	if l.file == nil || day != l.currentDay {
		if l.file != nil {
			l.file.Close()
			l.file = nil
		}
		path := filepath.Join(l.logDir, logFilename(time.Now()))
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, constants.FilePermissions)
		if err != nil {
			fmt.Printf("[LOGGER_ERROR] Failed to open log file: %v\n", err)
			return
		}
		l.file = f
		l.currentDay = day
	}

	if _, err := l.file.WriteString(line); err != nil {
		fmt.Printf("[LOGGER_ERROR] Failed to write to log file: %v\n", err)
	}
}

func dayKey(t time.Time) int {
	return t.Year()*1000 + t.YearDay()
}

func logFilename(t time.Time) string {
	return t.UTC().Format("2006-01-02") + constants.LogFileExtension
}
