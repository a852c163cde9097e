package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func newBufLogger(buf *bytes.Buffer) zerolog.Logger {
	return zerolog.New(buf).Level(zerolog.DebugLevel)
}

func TestNewDispatcherLogger(t *testing.T) {
	dl := NewDispatcherLogger(newBufLogger(&bytes.Buffer{}))
	if dl == nil {
		t.Fatal("expected non-nil DispatcherLogger")
	}
}

func TestDispatcherLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(newBufLogger(&buf))

	dl.Debug("test message", "key1", "value1", "key2", 42)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if entry["level"] != "debug" {
		t.Errorf("expected level 'debug', got %v", entry["level"])
	}
	if entry["message"] != "test message" {
		t.Errorf("expected message 'test message', got %v", entry["message"])
	}
	if entry["key1"] != "value1" {
		t.Errorf("expected key1='value1', got %v", entry["key1"])
	}
	if entry["key2"] != float64(42) { // JSON numbers are float64
		t.Errorf("expected key2=42, got %v", entry["key2"])
	}
}

func TestDispatcherLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(newBufLogger(&buf))

	dl.Info("info message", "status", "ok")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["level"] != "info" {
		t.Errorf("expected level 'info', got %v", entry["level"])
	}
	if entry["status"] != "ok" {
		t.Errorf("expected status='ok', got %v", entry["status"])
	}
}

func TestDispatcherLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(newBufLogger(&buf))

	dl.Error("boom", "reason", "test")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["level"] != "error" {
		t.Errorf("expected level 'error', got %v", entry["level"])
	}
}

func TestToFields_OddPairs(t *testing.T) {
	fields := toFields([]any{"a", 1, "dangling"})
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields["a"] != 1 {
		t.Errorf("expected a=1, got %v", fields["a"])
	}
}

func TestToFields_NonStringKey(t *testing.T) {
	fields := toFields([]any{42, "value", "ok", true})
	if len(fields) != 1 {
		t.Fatalf("expected non-string keys to be skipped, got %d fields", len(fields))
	}
	if fields["ok"] != true {
		t.Errorf("expected ok=true, got %v", fields["ok"])
	}
}
