package audit

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Failed to parse logged JSON: %v\nOutput: %s", err, buf.String())
	}
	return out
}

func TestLogger_LogSuccess(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.New(&buf))

	logger.LogSuccess("event.update", "01HX12USER", "event", "01HX12EVENT", map[string]string{"fields": "title"})

	logged := decodeLine(t, &buf)
	if logged["audit"] != true {
		t.Errorf("expected audit=true, got %v", logged["audit"])
	}
	if logged["action"] != "event.update" {
		t.Errorf("Action mismatch: got %v", logged["action"])
	}
	if logged["actor"] != "01HX12USER" {
		t.Errorf("Actor mismatch: got %v", logged["actor"])
	}
	if logged["resource_id"] != "01HX12EVENT" {
		t.Errorf("ResourceID mismatch: got %v", logged["resource_id"])
	}
	if logged["status"] != "success" {
		t.Errorf("Status mismatch: got %v", logged["status"])
	}
	details, ok := logged["details"].(map[string]any)
	if !ok || details["fields"] != "title" {
		t.Errorf("Details mismatch: got %v", logged["details"])
	}
}

func TestLogger_LogFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.New(&buf))

	logger.LogFailure("event.delete", "01HX12USER", "event", "01HX12EVENT", nil)

	logged := decodeLine(t, &buf)
	if logged["status"] != "failure" {
		t.Errorf("Status mismatch: got %v", logged["status"])
	}
	if _, ok := logged["details"]; ok {
		t.Error("details should be omitted when empty")
	}
}

func TestLogger_TimestampPreserved(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.New(&buf))

	at := time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC)
	logger.Log(Entry{Timestamp: at, Action: "user.register", Actor: "u", Status: "success"})

	logged := decodeLine(t, &buf)
	if logged["at"] != at.Format(zerolog.TimeFieldFormat) {
		t.Errorf("timestamp mismatch: got %v", logged["at"])
	}
}

func TestLogger_NilSafe(t *testing.T) {
	var logger *Logger
	logger.LogSuccess("event.create", "u", "event", "e", nil)
}
