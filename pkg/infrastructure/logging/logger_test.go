package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestWithContext_AddsRunID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("disruption-test", false, &buf)
	defer func() { Logger = Logger.Output(&bytes.Buffer{}) }()

	ctx := WithRunID(context.Background(), "run-123")
	Info(ctx).Str("product", "P1").Msg("planned")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["run_id"] != "run-123" {
		t.Errorf("Expected run_id run-123, got %v", entry["run_id"])
	}
	if entry["service"] != "disruption-test" {
		t.Errorf("Expected service field, got %v", entry["service"])
	}
	if entry["product"] != "P1" {
		t.Errorf("Expected product P1, got %v", entry["product"])
	}
}

func TestRunID_Missing(t *testing.T) {
	if id := RunID(context.Background()); id != "" {
		t.Errorf("Expected empty run id, got %s", id)
	}
}
