// Package config defines the ledwall-cli configuration file.
package config

import "time"

// CLIConfig is the configuration for ledwall-cli (~/.ledwall/cli.yaml).
type CLIConfig struct {
	// Server is the default server address.
	Server string `yaml:"server"`

	// Output is the default output format: table, json or yaml.
	Output string `yaml:"output"`

	// Timeout bounds each request.
	Timeout time.Duration `yaml:"timeout"`

	// HistoryFile stores shell history. Empty disables history.
	HistoryFile string `yaml:"history_file"`

	// Profiles are named server addresses selectable with --server @name.
	Profiles map[string]string `yaml:"profiles,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:      "localhost:5080",
		Output:      "table",
		Timeout:     30 * time.Second,
		HistoryFile: defaultHistoryFile(),
		Profiles:    make(map[string]string),
	}
}
