package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetupWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "habitlog.log")

	logger, closeFn, err := Setup(Options{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.InfoLevel)
	})

	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", logger.GetLevel())
	}

	logger.WithField("habit_id", "abc").Info("habit toggled")
	if err := closeFn(); err != nil {
		t.Fatalf("close returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "habit toggled") || !strings.Contains(string(data), "habit_id=abc") {
		t.Fatalf("unexpected log content: %s", data)
	}
}

func TestSetupFallsBackToInfo(t *testing.T) {
	logger, _, err := Setup(Options{Level: "loud"})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if logger.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level, got %s", logger.GetLevel())
	}
}
