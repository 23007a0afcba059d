package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
		_ = SetLevel("info")
	})
	return buf
}

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := captureLogs(t)

	Info(context.Background(), "hello", "user", "test")

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatalf("expected log output, got empty string")
	}
	for _, token := range []string{"ts=", "level=info", "msg=hello", "user=test"} {
		if !strings.Contains(line, token) {
			t.Fatalf("expected %q in log line, got %q", token, line)
		}
	}
}

func TestRequestIDIsAttached(t *testing.T) {
	buf := captureLogs(t)

	ctx := WithRequestID(context.Background(), "req-123")
	Warn(ctx, "slow upstream")

	line := buf.String()
	if !strings.Contains(line, "request_id=req-123") {
		t.Fatalf("expected request id in log line, got %q", line)
	}
	if !strings.Contains(line, "level=warn") {
		t.Fatalf("expected warn level, got %q", line)
	}
	if got := RequestID(ctx); got != "req-123" {
		t.Fatalf("RequestID() = %q", got)
	}
}

func TestSetLevel(t *testing.T) {
	buf := captureLogs(t)

	if err := SetLevel("error"); err != nil {
		t.Fatalf("SetLevel(error) returned %v", err)
	}
	Info(context.Background(), "suppressed")
	if buf.Len() != 0 {
		t.Fatalf("expected info line to be filtered, got %q", buf.String())
	}

	if err := SetLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
