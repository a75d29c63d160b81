package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tkaria/council/internal/config"
)

func TestLoggerWritesTimestampedLines(t *testing.T) {
	projectDir := t.TempDir()
	logger, err := New(projectDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Printf("iteration %d complete", 1)
	logger.Printf("trailing newline stripped\n")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	path := filepath.Join(projectDir, config.CouncilDir, "logs", "council.log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "[") || !strings.Contains(lines[0], "iteration 1 complete") {
		t.Errorf("first line = %q", lines[0])
	}
	if strings.Contains(lines[1], "\n") {
		t.Errorf("second line kept its newline: %q", lines[1])
	}
}

func TestLoggerAppendsAcrossSessions(t *testing.T) {
	projectDir := t.TempDir()
	for i := 0; i < 2; i++ {
		logger, err := New(projectDir)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		logger.Printf("session %d", i)
		if err := logger.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	data, err := os.ReadFile(filepath.Join(projectDir, config.CouncilDir, "logs", "council.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "session 0") || !strings.Contains(string(data), "session 1") {
		t.Fatalf("log did not accumulate both sessions: %q", data)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Printf("ignored")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close on nil: %v", err)
	}
}
