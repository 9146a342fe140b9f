// Package command provides CLI command definitions for ledwall-cli.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: Root command, global flags, config resolution
//   - slot.go: Slot subcommand group
//   - mode.go: Mode, state, live and preview commands
//   - connect.go: Connection management and ping
//   - config.go: CLI configuration and server profiles
//   - shell.go: Interactive shell
//
// Commands parse their arguments, call the API through pkg/client and
// print results with the configured output format.
package command
