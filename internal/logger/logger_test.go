package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsAttrs(t *testing.T) {
	var buf bytes.Buffer
	lg := New(Config{Level: "debug", Output: &buf}).With("component", "link").WithGroup("ws")
	lg.Info("连接已建立", "url", "ws://localhost:9001/position")

	line := buf.String()
	if !strings.Contains(line, "INFO  连接已建立") {
		t.Fatalf("missing level/message: %q", line)
	}
	if !strings.Contains(line, "component=link") || !strings.Contains(line, "ws.url=ws://localhost:9001/position") {
		t.Fatalf("missing attrs: %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := New(Config{Level: "warn", Output: &buf})
	lg.Info("hidden")
	lg.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
