package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides such as LEDWALL_SERVER.
const EnvPrefix = "LEDWALL_"

func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".ledwall")
}

func defaultHistoryFile() string {
	if dir := configDir(); dir != "" {
		return filepath.Join(dir, "history")
	}
	return ""
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "cli.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cli config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse cli config %s: %w", path, err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]string)
	}
	return cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create cli config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode cli config: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write cli config: %w", err)
	}
	return os.Chmod(path, 0o600)
}

// Merge applies LEDWALL_* environment values from env over cfg.
// Unknown keys and unparsable values are ignored.
func Merge(cfg *CLIConfig, env []string) *CLIConfig {
	for _, kv := range env {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) || value == "" {
			continue
		}
		switch strings.TrimPrefix(key, EnvPrefix) {
		case "SERVER":
			cfg.Server = value
		case "OUTPUT":
			cfg.Output = value
		case "TIMEOUT":
			if d, err := time.ParseDuration(value); err == nil {
				cfg.Timeout = d
			}
		case "HISTORY_FILE":
			cfg.HistoryFile = value
		}
	}
	return cfg
}

// ResolveServer expands a @profile reference.
func (c *CLIConfig) ResolveServer(server string) (string, error) {
	name, ok := strings.CutPrefix(server, "@")
	if !ok {
		return server, nil
	}
	addr, found := c.Profiles[name]
	if !found {
		return "", fmt.Errorf("unknown server profile %q", name)
	}
	return addr, nil
}
