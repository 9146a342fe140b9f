// Package repl provides the interactive shell for ledwall-cli.
//
// The shell uses peterh/liner for line editing, tab completion over the
// command tree and persistent history. Each line is split into words and
// run through the same command tree as single-command mode.
package repl
