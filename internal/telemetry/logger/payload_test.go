package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSummarizePayload(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"bytes", slog.Any("body", []byte{1, 2, 3}), "<3 bytes>"},
		{"short string", slog.String("text", "hello"), "hello"},
		{"long string", slog.String("text", strings.Repeat("a", 300)), strings.Repeat("a", 256) + "...(300 bytes)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarizePayload(tt.attr)
			if got.Value.String() != tt.want {
				t.Errorf("summarizePayload() = %q, want %q", got.Value.String(), tt.want)
			}
		})
	}
}

func TestLogger_SummarizesBytes(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("slot written", "data", []byte("GIF89a-lots-of-pixels"), slog.Group("req", slog.Any("body", []byte{0xff})))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry["data"] != "<21 bytes>" {
		t.Errorf("data = %v, want <21 bytes>", entry["data"])
	}
	if group, ok := entry["req"].(map[string]any); !ok || group["body"] != "<1 bytes>" {
		t.Errorf("req = %v, want summarized body", entry["req"])
	}
}
