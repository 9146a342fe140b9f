package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server != "localhost:5080" {
		t.Errorf("Server = %q, want %q", cfg.Server, "localhost:5080")
	}
	if cfg.Output != "table" {
		t.Errorf("Output = %q, want %q", cfg.Output, "table")
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.Profiles == nil {
		t.Error("Profiles should not be nil")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	expected := filepath.Join(".ledwall", "cli.yaml")
	if len(path) < len(expected) || path[len(path)-len(expected):] != expected {
		t.Errorf("Path = %q, should end with %q", path, expected)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load should not error for nonexistent file: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cli.yaml")

	cfg := Default()
	cfg.Server = "unix:///run/ledwall.sock"
	cfg.Output = "json"
	cfg.Timeout = 5 * time.Second
	cfg.Profiles["lobby"] = "10.0.0.7:5080"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := os.WriteFile(path, []byte("output: yaml\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "yaml" {
		t.Errorf("Output = %q, want yaml", cfg.Output)
	}
	if cfg.Server != "localhost:5080" {
		t.Errorf("Server = %q, want default", cfg.Server)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestMerge(t *testing.T) {
	cfg := Merge(Default(), []string{
		"LEDWALL_SERVER=panel:5080",
		"LEDWALL_OUTPUT=json",
		"LEDWALL_TIMEOUT=2s",
		"LEDWALL_TIMEOUT_BOGUS=1",
		"HOME=/root",
		"LEDWALL_OUTPUT_EXTRA",
	})

	if cfg.Server != "panel:5080" {
		t.Errorf("Server = %q", cfg.Server)
	}
	if cfg.Output != "json" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}

	bad := Merge(Default(), []string{"LEDWALL_TIMEOUT=soon"})
	if bad.Timeout != 30*time.Second {
		t.Errorf("unparsable timeout should be ignored, got %v", bad.Timeout)
	}
}

func TestResolveServer(t *testing.T) {
	cfg := Default()
	cfg.Profiles["lobby"] = "10.0.0.7:5080"

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"localhost:5080", "localhost:5080", false},
		{"@lobby", "10.0.0.7:5080", false},
		{"@missing", "", true},
	}
	for _, tt := range tests {
		got, err := cfg.ResolveServer(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolveServer(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ResolveServer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
