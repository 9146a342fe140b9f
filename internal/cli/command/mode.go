package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ledwall-go/internal/cli/output"
	"github.com/yndnr/ledwall-go/pkg/client"
)

// ModeCommand returns the mode subcommand group.
func ModeCommand() *cli.Command {
	return &cli.Command{
		Name:   "mode",
		Usage:  "Show or change the display mode",
		Action: modeShow,
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the current mode",
				Action: modeShow,
			},
			{
				Name:    "black",
				Aliases: []string{"dark"},
				Usage:   "Blank the panel",
				Action:  modeAction((*client.Client).GoBlack),
			},
			{
				Name:   "live",
				Usage:  "Show frames pushed with 'live push'",
				Action: modeAction((*client.Client).GoLive),
			},
			{
				Name:      "slot",
				Usage:     "Show one slot",
				ArgsUsage: "INDEX",
				Action:    modeSlot,
			},
			{
				Name:    "round-robin",
				Aliases: []string{"rr"},
				Usage:   "Cycle through the populated slots",
				Action:  modeAction((*client.Client).GoRoundRobin),
			},
		},
	}
}

// modeView renders a ModeStatus as a table.
type modeView client.ModeStatus

func (v modeView) Table() *output.Table {
	t := output.NewTable("MODE", "SLOT")
	slot := ""
	if v.Descriptor.Slot != nil {
		slot = strconv.Itoa(*v.Descriptor.Slot)
	}
	t.AddRow(v.Descriptor.Mode, slot)
	return t
}

func modeShow(c *cli.Context) error {
	return modeAction((*client.Client).Mode)(c)
}

type transitionFunc func(*client.Client, context.Context) (*client.ModeStatus, error)

func modeAction(fn transitionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		cl, err := apiClient(c)
		if err != nil {
			return err
		}
		st, err := fn(cl, c.Context)
		if err != nil {
			return err
		}
		return printer(c).Print(modeView(*st))
	}
}

func modeSlot(c *cli.Context) error {
	index, err := indexArg(c)
	if err != nil {
		return err
	}
	return modeAction(func(cl *client.Client, ctx context.Context) (*client.ModeStatus, error) {
		return cl.GoSlot(ctx, index)
	})(c)
}

// StateCommand returns the state subcommand group.
func StateCommand() *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Inspect or replay state descriptors",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the current state descriptor as JSON",
				Action: stateShow,
			},
			{
				Name:      "visit",
				Usage:     "Apply a state descriptor",
				ArgsUsage: "DESCRIPTOR (JSON, black, live, round_robin or slot:N)",
				Action:    stateVisit,
			},
		},
	}
}

func stateShow(c *cli.Context) error {
	cl, err := apiClient(c)
	if err != nil {
		return err
	}
	st, err := cl.Mode(c.Context)
	if err != nil {
		return err
	}
	data, err := json.Marshal(st.Descriptor)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}

func stateVisit(c *cli.Context) error {
	arg := strings.Join(c.Args().Slice(), " ")
	if arg == "" {
		return errors.New("DESCRIPTOR required")
	}
	d, err := parseDescriptor(arg)
	if err != nil {
		return err
	}
	return modeAction(func(cl *client.Client, ctx context.Context) (*client.ModeStatus, error) {
		return cl.Visit(ctx, d)
	})(c)
}

// parseDescriptor accepts a JSON descriptor or the short forms
// "black", "live", "round_robin" and "slot:N". Validation is left to the
// server.
func parseDescriptor(s string) (client.Descriptor, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		var d client.Descriptor
		if err := json.Unmarshal([]byte(s), &d); err != nil {
			return client.Descriptor{}, fmt.Errorf("invalid descriptor: %w", err)
		}
		return d, nil
	}
	if rest, ok := strings.CutPrefix(s, "slot:"); ok {
		i, err := strconv.Atoi(rest)
		if err != nil {
			return client.Descriptor{}, fmt.Errorf("invalid slot index %q", rest)
		}
		return client.Descriptor{Mode: "slot", Slot: &i}, nil
	}
	return client.Descriptor{Mode: s}, nil
}

// LiveCommand returns the live subcommand group.
func LiveCommand() *cli.Command {
	return &cli.Command{
		Name:  "live",
		Usage: "Push live frames",
		Subcommands: []*cli.Command{
			{
				Name:      "push",
				Usage:     "Send image files as live frames",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  "fps",
						Value: 10,
						Usage: "frames per second",
					},
					&cli.BoolFlag{
						Name:  "go-live",
						Usage: "switch the display to live mode first",
					},
				},
				Action: livePush,
			},
		},
	}
}

// liveSummary is the result of live push.
type liveSummary struct {
	Frames  int `json:"frames"`
	Shown   int `json:"shown"`
	Dropped int `json:"dropped"`
	Limited int `json:"limited"`
}

func (s liveSummary) Table() *output.Table {
	t := output.NewTable("FRAMES", "SHOWN", "DROPPED", "LIMITED")
	t.AddRow(strconv.Itoa(s.Frames), strconv.Itoa(s.Shown), strconv.Itoa(s.Dropped), strconv.Itoa(s.Limited))
	return t
}

func livePush(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return errors.New("at least one FILE required")
	}
	fps := c.Float64("fps")
	if fps <= 0 {
		return fmt.Errorf("--fps must be positive, got %v", fps)
	}
	frames := make([][]byte, len(files))
	for i, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		frames[i] = data
	}

	cl, err := apiClient(c)
	if err != nil {
		return err
	}
	if c.Bool("go-live") {
		if _, err := cl.GoLive(c.Context); err != nil {
			return err
		}
	}

	p := printer(c)
	var bar *output.ProgressBar
	if p.Format() == output.FormatTable {
		bar = output.NewProgressBar(c.App.ErrWriter, "Pushing", len(frames))
	}

	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	sum := liveSummary{Frames: len(frames)}
	for i, data := range frames {
		if i > 0 {
			select {
			case <-c.Context.Done():
				return c.Context.Err()
			case <-ticker.C:
			}
		}
		shown, err := cl.PushLive(c.Context, data)
		switch {
		case client.StatusCode(err) == http.StatusTooManyRequests:
			sum.Limited++
		case err != nil:
			return fmt.Errorf("frame %s: %w", files[i], err)
		case shown:
			sum.Shown++
		default:
			sum.Dropped++
		}
		if bar != nil {
			bar.Increment(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}
	return p.Print(sum)
}

// PreviewCommand returns the preview command.
func PreviewCommand() *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Save the frame currently on the panel as PNG",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"O"},
				Value:   "preview.png",
				Usage:   "output `FILE`",
			},
		},
		Action: func(c *cli.Context) error {
			cl, err := apiClient(c)
			if err != nil {
				return err
			}
			data, err := cl.Preview(c.Context)
			if err != nil {
				return err
			}
			out := c.String("out")
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			printer(c).Message("Wrote preview (%s) to %s", output.FormatBytes(int64(len(data))), out)
			return nil
		},
	}
}
