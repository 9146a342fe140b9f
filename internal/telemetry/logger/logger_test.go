package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// decodeLines parses every JSON log line written to buf.
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"json", `"msg":"slot updated"`},
		{"", `"msg":"slot updated"`},
		{"text", `msg="slot updated"`},
		{"console", `msg="slot updated"`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(Config{Level: "info", Format: tt.format, Output: &buf})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			l.Info("slot updated", "index", 3)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{"debug", []string{"DEBUG", "INFO", "WARN", "ERROR"}},
		{"info", []string{"INFO", "WARN", "ERROR"}},
		{"warning", []string{"WARN", "ERROR"}},
		{"error", []string{"ERROR"}},
		{"bogus", []string{"INFO", "WARN", "ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l, _ := New(Config{Level: tt.level, Format: "json", Output: &buf})
			l.Debug("render task started")
			l.Info("display mode changed")
			l.Warn("round robin skipping slot")
			l.Error("render task did not stop")

			lines := decodeLines(t, &buf)
			if len(lines) != len(tt.want) {
				t.Fatalf("got %d lines, want %d", len(lines), len(tt.want))
			}
			for i, line := range lines {
				if line["level"] != tt.want[i] {
					t.Errorf("line %d level = %v, want %s", i, line["level"], tt.want[i])
				}
			}
		})
	}
}

func TestSetLevel_AppliesToExistingLoggers(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})
	derived := l.With("component", "display")
	t.Cleanup(func() { SetLevel("info") })

	derived.Debug("hidden")
	SetLevel("debug")
	derived.Debug("visible")
	l.Slog().Debug("visible through slog")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %s", len(lines), buf.String())
	}
	if lines[0]["msg"] != "visible" || lines[0]["component"] != "display" {
		t.Errorf("line = %v", lines[0])
	}
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "x")
	l.WithContext(ctx).With("slot", 2).Info("slot cleared")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0]["slot"] != float64(2) {
		t.Errorf("lines = %v", lines)
	}
}

func TestFromSlog(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	FromSlog(base).Info("wrapped")
	if !strings.Contains(buf.String(), `"msg":"wrapped"`) {
		t.Errorf("output = %q", buf.String())
	}
	if FromSlog(nil).Slog() == nil {
		t.Error("FromSlog(nil) should fall back to slog.Default")
	}
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})
	SetDefault(l)

	FromContext(context.Background()).Info("through default")
	if !strings.Contains(buf.String(), "through default") {
		t.Errorf("default logger not replaced: %q", buf.String())
	}
}
