package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("Failed to decode log line %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warning", WarnLevel},
		{"ERROR", ErrorLevel},
		{"bogus", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestJSONLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept too")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("Unexpected levels: %s, %s", entries[0].Level, entries[1].Level)
	}
}

func TestJSONLoggerWithSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := NewJSONLogger(&buf, InfoLevel)
	child := parent.With(Component("pocket"), RunID("r1"))

	parent.SetLevel(ErrorLevel)
	child.Info("should be filtered")
	child.Error("analysis failed", EntityID("F7"))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	f := entries[0].Fields
	if f["component"] != "pocket" || f["run_id"] != "r1" || f["entity_id"] != "F7" {
		t.Errorf("Unexpected fields: %v", f)
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	timer := StartTimer(logger, "analysis complete", Component("pocket"))
	time.Sleep(time.Millisecond)
	timer.EndWith(Count(3))

	timer = StartTimer(logger, "load failed")
	timer.EndError(errors.New("boom"))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Fields["latency"] == nil || entries[0].Fields["count"] != float64(3) {
		t.Errorf("Missing latency or count: %v", entries[0].Fields)
	}
	if entries[1].Level != "ERROR" || entries[1].Fields["error"] != "boom" {
		t.Errorf("Unexpected error entry: %+v", entries[1])
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("nothing")
	if logger.With(Count(1)) == nil {
		t.Error("With() returned nil")
	}
	if logger.GetLevel() != InfoLevel {
		t.Errorf("GetLevel() = %v, want INFO", logger.GetLevel())
	}
}

func TestErrorFieldNil(t *testing.T) {
	if f := Error(nil); f.Value != nil {
		t.Errorf("Error(nil).Value = %v, want nil", f.Value)
	}
}
