// Package config provides CLI configuration for ledwall-cli.
//
// This package defines CLI-specific configuration:
//
//   - spec.go: CLIConfig struct (~/.ledwall/cli.yaml)
//   - loader.go: loading, saving and environment merging
//
// Configuration includes:
//
//   - Default server address and named profiles
//   - Output format preference
//   - Request timeout
//   - Shell history location
package config
