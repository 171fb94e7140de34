package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLevelFiltering(t *testing.T) {
	l := NewLogger("warn")

	if levelOrder[l.level] != levelOrder[LevelWarn] {
		t.Fatalf("expected level WARN, got %s", l.level)
	}

	l.SetLevel("error")
	if l.level != LevelError {
		t.Errorf("expected level ERROR after SetLevel, got %s", l.level)
	}

	// Unknown levels are ignored
	l.SetLevel("verbose")
	if l.level != LevelError {
		t.Errorf("expected level unchanged after bad SetLevel, got %s", l.level)
	}
}

func TestNewLoggerUnknownLevelDefaultsToDebug(t *testing.T) {
	l := NewLogger("nope")
	if l.level != LevelDebug {
		t.Errorf("expected DEBUG fallback, got %s", l.level)
	}
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()

	l := NewLogger("debug")
	if err := l.SetLogDir(dir); err != nil {
		t.Fatalf("SetLogDir failed: %v", err)
	}
	defer l.Close()

	l.Info("hello %s", "world")
	l.Error("boom")

	path := filepath.Join(dir, logFilename(time.Now()))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "hello world") {
		t.Errorf("log file missing info line: %q", content)
	}
	if !strings.Contains(content, "[ERROR]") {
		t.Errorf("log file missing error line: %q", content)
	}
}

func TestDisableFileOutput(t *testing.T) {
	dir := t.TempDir()

	l := NewLogger("debug")
	if err := l.SetLogDir(dir); err != nil {
		t.Fatalf("SetLogDir failed: %v", err)
	}
	l.Info("one")

	if err := l.SetLogDir(""); err != nil {
		t.Fatalf("SetLogDir(\"\") failed: %v", err)
	}
	l.Info("two")

	data, err := os.ReadFile(filepath.Join(dir, logFilename(time.Now())))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if strings.Contains(string(data), "two") {
		t.Error("line written after file logging was disabled")
	}
}
