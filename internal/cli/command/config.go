package command

import (
	"errors"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ledwall-go/internal/cli/config"
	"github.com/yndnr/ledwall-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:  "profile",
				Usage: "Manage server profiles",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List server profiles",
						Action: profileList,
					},
					{
						Name:      "set",
						Usage:     "Add or update a profile",
						ArgsUsage: "NAME ADDRESS",
						Action:    profileSet,
					},
					{
						Name:      "remove",
						Aliases:   []string{"rm"},
						Usage:     "Remove a profile",
						ArgsUsage: "NAME",
						Action:    profileRemove,
					},
				},
			},
		},
	}
}

func configPath(c *cli.Context) string {
	if p, ok := c.App.Metadata[metaConfigPath].(string); ok && p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

func configShow(c *cli.Context) error {
	cfg := cliConfig(c)
	return printer(c).Print(map[string]string{
		"config_file":  configPath(c),
		"server":       cfg.Server,
		"output":       cfg.Output,
		"timeout":      cfg.Timeout.String(),
		"history_file": cfg.HistoryFile,
	})
}

type profileTable map[string]string

func (p profileTable) Table() *output.Table {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	sort.Strings(names)
	t := output.NewTable("NAME", "ADDRESS")
	for _, n := range names {
		t.AddRow(n, p[n])
	}
	return t
}

func profileList(c *cli.Context) error {
	cfg, err := config.Load(configPath(c))
	if err != nil {
		return err
	}
	return printer(c).Print(profileTable(cfg.Profiles))
}

// editProfiles loads the config file without environment or flag
// overrides, applies fn and saves it back.
func editProfiles(c *cli.Context, fn func(map[string]string) error) error {
	path := configPath(c)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]string)
	}
	if err := fn(cfg.Profiles); err != nil {
		return err
	}
	return config.Save(cfg, path)
}

func profileSet(c *cli.Context) error {
	name, addr := c.Args().Get(0), c.Args().Get(1)
	if name == "" || addr == "" {
		return errors.New("NAME and ADDRESS required")
	}
	err := editProfiles(c, func(p map[string]string) error {
		p[name] = addr
		return nil
	})
	if err != nil {
		return err
	}
	printer(c).Message("Profile %s set to %s", name, addr)
	return nil
}

func profileRemove(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return errors.New("NAME required")
	}
	err := editProfiles(c, func(p map[string]string) error {
		if _, ok := p[name]; !ok {
			return errors.New("no profile named " + name)
		}
		delete(p, name)
		return nil
	})
	if err != nil {
		return err
	}
	printer(c).Message("Profile %s removed", name)
	return nil
}
