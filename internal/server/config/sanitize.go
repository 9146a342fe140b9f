// Package config defines the server configuration structure.
package config

import (
	"net/url"
	"strings"
)

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	// Create a shallow copy
	sanitized := *cfg
	sanitized.Server.HTTP.CORSOrigins = append([]string(nil), cfg.Server.HTTP.CORSOrigins...)

	// The remote address may carry basic auth credentials.
	if sanitized.Storage.Remote.Addr != "" {
		sanitized.Storage.Remote.Addr = maskURLPassword(sanitized.Storage.Remote.Addr)
	}

	return &sanitized
}

// maskURLPassword masks the password of a URL, if any.
func maskURLPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if pw, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), maskSecret(pw))
	}
	return u.String()
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
