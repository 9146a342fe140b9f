package repl

import (
	"sort"
	"strings"
)

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over command lines such as "slot list".
func NewCompleter(commands []string) *Completer {
	sorted := append([]string(nil), commands...)
	sort.Strings(sorted)
	return &Completer{commands: sorted}
}

// Complete returns completion suggestions for the given prefix.
func (c *Completer) Complete(line string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, line) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
