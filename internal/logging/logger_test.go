package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"wares/internal/logging"
)

func TestConsoleHandlerRendersComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "publish")
	logger.Info("step completed", logging.String(logging.FieldStep, "persist_base"), logging.Int64(logging.FieldProductID, 42))

	line := buf.String()
	if !strings.Contains(line, "INFO publish: step completed") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "step=persist_base") || !strings.Contains(line, "product_id=42") {
		t.Fatalf("missing attrs in line: %q", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hello", logging.String("k", "v"))
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Fatalf("unexpected json output: %q", buf.String())
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
