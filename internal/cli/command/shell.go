package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ledwall-go/internal/cli/repl"
)

// ShellCommand returns the shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:   "shell",
		Usage:  "Start the interactive shell (default when no command is given)",
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	if c.Args().Present() {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}
	r := repl.New(repl.Config{
		Prompt:      "ledwall> ",
		Commands:    commandPaths(c.App.Commands, ""),
		HistoryFile: cliConfig(c).HistoryFile,
		Output:      c.App.Writer,
	}, shellExecutor(c))
	return r.Run(c.Context)
}

// shellExecutor runs each shell line through a fresh command tree that
// shares the connection manager and the resolved global settings.
func shellExecutor(c *cli.Context) repl.Executor {
	cfg := cliConfig(c)
	mgr := connManager(c)
	globals := []string{
		appName,
		"--config", configPath(c),
		"--server", cfg.Server,
		"--output", cfg.Output,
		"--timeout", cfg.Timeout.String(),
	}
	return func(ctx context.Context, args []string) error {
		if len(args) > 0 && args[0] == "shell" {
			return errors.New("already in the shell")
		}
		app := newApp(c.App.Writer, c.App.ErrWriter, mgr)
		app.Action = func(c *cli.Context) error {
			return fmt.Errorf("unknown command %q", c.Args().First())
		}
		argv := append(append([]string(nil), globals...), args...)
		return app.RunContext(ctx, argv)
	}
}

// commandPaths lists every runnable command line, such as "slot list".
func commandPaths(cmds []*cli.Command, prefix string) []string {
	var paths []string
	for _, cmd := range cmds {
		if cmd.Hidden || cmd.Name == "help" || cmd.Name == "shell" {
			continue
		}
		path := prefix + cmd.Name
		if len(cmd.Subcommands) == 0 || cmd.Action != nil {
			paths = append(paths, path)
		}
		paths = append(paths, commandPaths(cmd.Subcommands, path+" ")...)
	}
	return paths
}
