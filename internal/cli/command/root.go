package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ledwall-go/internal/cli/config"
	"github.com/yndnr/ledwall-go/internal/cli/connection"
	"github.com/yndnr/ledwall-go/internal/cli/output"
	"github.com/yndnr/ledwall-go/internal/infra/buildinfo"
	"github.com/yndnr/ledwall-go/pkg/client"
)

const appName = "ledwall-cli"

// App metadata keys.
const (
	metaConnMgr    = "connMgr"
	metaConfig     = "config"
	metaConfigPath = "configPath"
)

// App creates the CLI application writing to stdout and stderr.
func App() *cli.App {
	return NewApp(os.Stdout, os.Stderr)
}

// NewApp creates the CLI application with the given writers.
func NewApp(stdout, stderr io.Writer) *cli.App {
	return newApp(stdout, stderr, nil)
}

// newApp builds the command tree. A non-nil mgr is shared, which lets
// the shell keep one connection across lines.
func newApp(stdout, stderr io.Writer, mgr *connection.Manager) *cli.App {
	app := &cli.App{
		Name:        appName,
		Usage:       "LED wall command-line tool",
		Version:     buildinfo.Version,
		HideVersion: true,
		Flags:       globalFlags(),
		Commands: []*cli.Command{
			SlotCommand(),
			ModeCommand(),
			StateCommand(),
			LiveCommand(),
			PreviewCommand(),
			ConnectCommand(),
			DisconnectCommand(),
			PingCommand(),
			ConfigCommand(),
			VersionCommand(),
			ShellCommand(),
		},
		Writer:         stdout,
		ErrWriter:      stderr,
		Metadata:       map[string]any{},
		Before:         before,
		Action:         shellAction,
		ExitErrHandler: func(*cli.Context, error) {},
	}
	if mgr != nil {
		app.Metadata[metaConnMgr] = mgr
	}
	return app
}

// globalFlags returns the global CLI flags. Defaults come from the CLI
// config file and LEDWALL_* variables, so the flags carry no values.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "server address (host:port, URL, unix:///path or @profile)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "request timeout",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file",
			Value:   config.DefaultConfigPath(),
		},
	}
}

// before resolves the effective configuration: file, then environment,
// then flags.
func before(c *cli.Context) error {
	path := c.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = config.Merge(cfg, os.Environ())

	if c.IsSet("server") {
		cfg.Server = c.String("server")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if cfg.Server, err = cfg.ResolveServer(cfg.Server); err != nil {
		return err
	}
	if _, err := output.ParseFormat(cfg.Output); err != nil {
		return err
	}

	if _, ok := c.App.Metadata[metaConnMgr]; !ok {
		c.App.Metadata[metaConnMgr] = connection.NewManager(cfg.Timeout)
	}
	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaConfigPath] = path
	return nil
}

// cliConfig returns the configuration resolved by before.
func cliConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// connManager retrieves the connection manager from context.
func connManager(c *cli.Context) *connection.Manager {
	if mgr, ok := c.App.Metadata[metaConnMgr].(*connection.Manager); ok {
		return mgr
	}
	mgr := connection.NewManager(cliConfig(c).Timeout)
	c.App.Metadata[metaConnMgr] = mgr
	return mgr
}

// apiClient returns the client for the current connection, or for the
// configured server when not connected.
func apiClient(c *cli.Context) (*client.Client, error) {
	mgr := connManager(c)
	if conn := mgr.Current(); conn != nil {
		return conn.Client, nil
	}
	return mgr.Client(cliConfig(c).Server)
}

// printer returns a Printer for the configured output format.
func printer(c *cli.Context) *output.Printer {
	format, err := output.ParseFormat(cliConfig(c).Output)
	if err != nil {
		format = output.FormatTable
	}
	return output.NewPrinter(c.App.Writer, format)
}

// indexArg parses the first positional argument as a slot index.
func indexArg(c *cli.Context) (int, error) {
	arg := c.Args().First()
	if arg == "" {
		return 0, errors.New("slot index required")
	}
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid slot index %q", arg)
	}
	return i, nil
}

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			info := buildinfo.Get()
			return printer(c).Print(map[string]string{
				"version":    info.Version,
				"commit":     info.Commit,
				"build_time": info.BuildTime,
				"go_version": info.GoVersion,
				"platform":   info.Platform,
			})
		},
	}
}
