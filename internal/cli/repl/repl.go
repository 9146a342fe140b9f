package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
)

// Executor runs one parsed command line.
type Executor func(ctx context.Context, args []string) error

// LineReader reads prompted lines. *liner.State satisfies it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	prompt    string
	exec      Executor
	output    io.Writer
	completer *Completer
	history   *History
}

// Config configures a REPL.
type Config struct {
	Prompt      string
	Commands    []string
	HistoryFile string
	Output      io.Writer
}

// New creates a new REPL instance.
func New(cfg Config, exec Executor) *REPL {
	if cfg.Prompt == "" {
		cfg.Prompt = "ledwall> "
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	return &REPL{
		prompt:    cfg.Prompt,
		exec:      exec,
		output:    cfg.Output,
		completer: NewCompleter(cfg.Commands),
		history:   NewHistory(cfg.HistoryFile),
	}
}

// Run reads commands from the terminal until exit, EOF or Ctrl-C.
func (r *REPL) Run(ctx context.Context) error {
	state := liner.NewLiner()
	defer state.Close()

	state.SetCtrlCAborts(true)
	state.SetCompleter(r.completer.Complete)
	r.history.Load(state)
	defer r.history.Save(state)

	return r.loop(ctx, state)
}

func (r *REPL) loop(ctx context.Context, reader LineReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := reader.Prompt(r.prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.output)
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		reader.AppendHistory(line)

		switch line {
		case "exit", "quit", "q":
			return nil
		case "help", "?":
			r.printHelp()
			continue
		}

		args, err := SplitArgs(line)
		if err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
			continue
		}
		if err := r.exec(ctx, args); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
	}
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.output, "Commands:")
	for _, c := range r.completer.commands {
		fmt.Fprintf(r.output, "  %s\n", c)
	}
	fmt.Fprintln(r.output, "  help, exit")
}

// SplitArgs splits a line into words. Single and double quotes group
// words; a backslash escapes the next character outside single quotes.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, c := range line {
		switch {
		case escaped:
			cur.WriteRune(c)
			escaped = false
		case c == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteRune(c)
			}
		case c == '\'' || c == '"':
			quote = c
			inWord = true
		case c == ' ' || c == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(c)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}
