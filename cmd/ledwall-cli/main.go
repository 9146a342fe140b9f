// Package main provides the entry point for ledwall-cli.
//
// ledwall-cli manages a ledwall-server: slot content, display modes,
// live frames and previews. Without a command it starts an interactive
// shell.
//
// Usage:
//
//	ledwall-cli [--server ADDR] [--output table|json|yaml] COMMAND
//	ledwall-cli slot set --kind text 2 notice.txt
//	ledwall-cli --server unix:///run/ledwall/api.sock mode round-robin
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/ledwall-go/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
