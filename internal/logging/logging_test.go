package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"":        log.InfoLevel,
		"bogus":   log.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("task rejected", "path", "tasks[1]")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info written at warn level: %s", out)
	}
	if !strings.Contains(out, "task rejected") || !strings.Contains(out, "path=tasks[1]") {
		t.Errorf("warn record missing fields: %s", out)
	}
}

func TestOpenAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskdeck.log")
	logger, closer, err := Open(path, "info")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	logger.Info("store loaded", "tasks", 3)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "store loaded") {
		t.Errorf("log file: %s", data)
	}
}

func TestOpenEmptyPathDiscards(t *testing.T) {
	logger, closer, err := Open("", "debug")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	logger.Error("nowhere")
	if err := closer.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
