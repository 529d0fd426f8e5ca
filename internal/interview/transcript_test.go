package interview

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTranscriptLoggerWritesPerSessionFiles(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewTranscriptLogger(TranscriptConfig{Enabled: true, Dir: dir, QueueSize: 16}, nil)
	if err != nil {
		t.Fatalf("NewTranscriptLogger failed: %v", err)
	}

	logger.Log(TranscriptEvent{SessionID: "s1", Actor: "agent", Phase: "introduction", Message: "hello"})
	logger.Log(TranscriptEvent{SessionID: "s1", Actor: "candidate", Phase: "introduction", Message: "hi there"})
	logger.Log(TranscriptEvent{SessionID: "s2", Actor: "agent", Phase: "introduction", Message: "welcome"})

	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "s1.ndjson"))
	if err != nil {
		t.Fatalf("Failed to read transcript: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines for session s1, got %d", len(lines))
	}

	var ev TranscriptEvent
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("Invalid NDJSON line: %v", err)
	}
	if ev.Message != "hello" || ev.Actor != "agent" {
		t.Errorf("Unexpected first event: %+v", ev)
	}
	if ev.Timestamp == "" {
		t.Error("Expected the logger to stamp events")
	}

	if _, err := os.Stat(filepath.Join(dir, "s2.ndjson")); err != nil {
		t.Errorf("Expected a separate file for session s2: %v", err)
	}
}

func TestTranscriptLoggerDisabled(t *testing.T) {
	logger, err := NewTranscriptLogger(TranscriptConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("NewTranscriptLogger failed: %v", err)
	}

	// No-ops all the way down, including on a nil receiver.
	logger.Log(TranscriptEvent{SessionID: "s1", Message: "dropped"})
	if err := logger.Close(); err != nil {
		t.Errorf("Close on disabled logger failed: %v", err)
	}

	var nilLogger *TranscriptLogger
	nilLogger.Log(TranscriptEvent{SessionID: "s1"})
	if err := nilLogger.Close(); err != nil {
		t.Errorf("Close on nil logger failed: %v", err)
	}
}
