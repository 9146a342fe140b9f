// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyDisplay(&cfg.Display); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr %q: %w", cfg.HTTP.Addr, err)
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	if cfg.HTTP.RateLimit < 0 {
		return errors.New("server.http.rate_limit must not be negative")
	}
	if cfg.HTTP.RateLimit > 0 && cfg.HTTP.RateBurst < 1 {
		return errors.New("server.http.rate_burst must be at least 1 when rate limiting is enabled")
	}
	if cfg.HTTP.MaxBodyBytes <= 0 {
		return errors.New("server.http.max_body_bytes must be positive")
	}
	if p := cfg.Local.SocketPath; p != "" && !filepath.IsAbs(p) {
		return fmt.Errorf("server.local.socket_path %q must be absolute", p)
	}
	return nil
}

func verifyDisplay(cfg *DisplaySection) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("display size %dx%d must be positive", cfg.Width, cfg.Height)
	}
	if cfg.NumSlots < 1 {
		return errors.New("display.num_slots must be at least 1")
	}
	if err := positive("display.minimum_slot_time", cfg.MinimumSlotTime); err != nil {
		return err
	}
	if err := positive("display.empty_backoff", cfg.EmptyBackoff); err != nil {
		return err
	}
	if err := positive("display.join_timeout", cfg.JoinTimeout); err != nil {
		return err
	}
	for name, v := range map[string]string{
		"display.foreground": cfg.Foreground,
		"display.background": cfg.Background,
	} {
		if !hexColor.MatchString(v) {
			return fmt.Errorf("%s %q is not a #RRGGBB color", name, v)
		}
	}
	if cfg.Text.Speed <= 0 || cfg.Text.FPS <= 0 {
		return errors.New("display.text.speed and display.text.fps must be positive")
	}
	if cfg.Live.MaxFPS < 0 {
		return errors.New("display.live.max_fps must not be negative")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Backend {
	case "memory":
	case "file", "badger":
		if cfg.DataDir == "" {
			return errors.New("storage.data_dir is required")
		}
		// Check if data directory exists or can be created
		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return errors.New("cannot create data directory: " + err.Error())
		}
		if cfg.Backend == "badger" && cfg.Badger.GCInterval != "" {
			if _, err := time.ParseDuration(cfg.Badger.GCInterval); err != nil {
				return fmt.Errorf("storage.badger.gc_interval: %w", err)
			}
		}
	case "remote":
		u, err := url.Parse(cfg.Remote.Addr)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("storage.remote.addr %q must be an http(s) URL", cfg.Remote.Addr)
		}
		if cfg.Remote.CAFile != "" {
			if _, err := os.Stat(cfg.Remote.CAFile); err != nil {
				return fmt.Errorf("storage.remote.ca_file: %w", err)
			}
		}
	default:
		return fmt.Errorf("storage.backend %q must be one of memory, file, badger, remote", cfg.Backend)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not a known level", cfg.Level)
	}
	switch cfg.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q must be json or text", cfg.Format)
	}
	return nil
}

func positive(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}
