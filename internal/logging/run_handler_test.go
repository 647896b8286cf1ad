package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRunIDHandler(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(newRunIDHandler(base, "run-123")).With("extra", "value")
	logger.Info("test message")

	output := buf.String()
	if !strings.Contains(output, `"run_id":"run-123"`) {
		t.Errorf("expected run_id in output, got: %s", output)
	}
	if !strings.Contains(output, `"extra":"value"`) {
		t.Errorf("expected extra attr in output, got: %s", output)
	}
}

func TestRunIDHandlerEdgeCases(t *testing.T) {
	if _, ok := newRunIDHandler(nil, "run").(NoopHandler); !ok {
		t.Error("expected NoopHandler when base is nil")
	}
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, nil)
	if h := newRunIDHandler(base, ""); h != base {
		t.Error("expected base handler when run id is empty")
	}
}
