package command

import (
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ledwall-go/internal/cli/output"
)

// ConnectCommand returns the connect command.
func ConnectCommand() *cli.Command {
	return &cli.Command{
		Name:      "connect",
		Usage:     "Connect to a server for the rest of the shell session",
		ArgsUsage: "[SERVER]",
		Action:    connectAction,
	}
}

func connectAction(c *cli.Context) error {
	cfg := cliConfig(c)
	server := cfg.Server
	if arg := c.Args().First(); arg != "" {
		resolved, err := cfg.ResolveServer(arg)
		if err != nil {
			return err
		}
		server = resolved
	}

	conn, err := connManager(c).Connect(c.Context, server)
	if err != nil {
		return err
	}
	printer(c).Message("Connected to %s (rtt %s)", conn.Server, conn.RTT.Round(time.Microsecond))
	return nil
}

// DisconnectCommand returns the disconnect command.
func DisconnectCommand() *cli.Command {
	return &cli.Command{
		Name:   "disconnect",
		Usage:  "Disconnect from the current server",
		Action: disconnectAction,
	}
}

func disconnectAction(c *cli.Context) error {
	mgr := connManager(c)
	p := printer(c)
	if !mgr.IsConnected() {
		p.Message("Not connected to any server")
		return nil
	}
	mgr.Disconnect()
	p.Message("Disconnected")
	return nil
}

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Measure round-trip time to the server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Value:   1,
				Usage:   "number of pings",
			},
		},
		Action: pingAction,
	}
}

type pingResult struct {
	Seq int           `json:"seq"`
	RTT time.Duration `json:"rtt_ns"`
}

type pingResults []pingResult

func (r pingResults) Table() *output.Table {
	t := output.NewTable("SEQ", "RTT")
	for _, p := range r {
		t.AddRow(strconv.Itoa(p.Seq), p.RTT.Round(time.Microsecond).String())
	}
	return t
}

func pingAction(c *cli.Context) error {
	cl, err := apiClient(c)
	if err != nil {
		return err
	}
	count := max(c.Int("count"), 1)
	results := make(pingResults, 0, count)
	for i := 1; i <= count; i++ {
		rtt, err := cl.Ping(c.Context)
		if err != nil {
			return err
		}
		results = append(results, pingResult{Seq: i, RTT: rtt})
	}
	return printer(c).Print(results)
}
