package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ledwall-go/internal/cli/output"
	"github.com/yndnr/ledwall-go/pkg/client"
)

// SlotCommand returns the slot subcommand group.
func SlotCommand() *cli.Command {
	return &cli.Command{
		Name:  "slot",
		Usage: "Manage content slots",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List all slots",
				Action:  slotList,
			},
			{
				Name:      "get",
				Usage:     "Show or download a slot",
				ArgsUsage: "INDEX",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"O"},
						Usage:   "write the content to `FILE`",
					},
				},
				Action: slotGet,
			},
			{
				Name:      "set",
				Usage:     "Upload content to a slot",
				ArgsUsage: "INDEX [FILE]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "kind",
						Aliases: []string{"k"},
						Usage:   "content kind: image, animation, text (default: from file extension)",
					},
					&cli.StringFlag{
						Name:    "text",
						Aliases: []string{"t"},
						Usage:   "store `TEXT` as a text slot instead of reading a file",
					},
				},
				Action: slotSet,
			},
			{
				Name:      "clear",
				Aliases:   []string{"rm"},
				Usage:     "Clear a slot",
				ArgsUsage: "INDEX",
				Action:    slotClear,
			},
			{
				Name:      "export",
				Usage:     "Save all slots to a directory on the server",
				ArgsUsage: "DIR",
				Action:    slotExport,
			},
			{
				Name:      "import",
				Usage:     "Load all slots from a directory on the server",
				ArgsUsage: "DIR",
				Action:    slotImport,
			},
		},
	}
}

// slotListView renders a SlotList as a table.
type slotListView struct {
	*client.SlotList
}

func (v slotListView) Table() *output.Table {
	t := output.NewTable("INDEX", "KIND", "SIZE", "DIGEST")
	for _, s := range v.Slots {
		size := ""
		if s.Kind != client.KindEmpty {
			size = output.FormatBytes(int64(s.Size))
		}
		t.AddRow(strconv.Itoa(s.Index), s.Kind, size, shortDigest(s.Digest))
	}
	return t
}

// slotInfoView renders one SlotInfo as key/value rows.
type slotInfoView client.SlotInfo

func (v slotInfoView) Table() *output.Table {
	return output.KeyValues(map[string]string{
		"index":  strconv.Itoa(v.Index),
		"kind":   v.Kind,
		"size":   output.FormatBytes(int64(v.Size)),
		"digest": v.Digest,
	})
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

func slotList(c *cli.Context) error {
	cl, err := apiClient(c)
	if err != nil {
		return err
	}
	list, err := cl.ListSlots(c.Context)
	if err != nil {
		return err
	}
	return printer(c).Print(slotListView{list})
}

func slotGet(c *cli.Context) error {
	index, err := indexArg(c)
	if err != nil {
		return err
	}
	cl, err := apiClient(c)
	if err != nil {
		return err
	}
	slot, err := cl.GetSlot(c.Context, index)
	if err != nil {
		return err
	}

	p := printer(c)
	if out := c.String("out"); out != "" {
		if slot.Empty() {
			return fmt.Errorf("slot %d is empty", index)
		}
		if err := os.WriteFile(out, slot.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		p.Message("Wrote %s (%s) to %s", slot.Kind, output.FormatBytes(int64(len(slot.Data))), out)
		return nil
	}

	fields := map[string]string{
		"index": strconv.Itoa(slot.Index),
		"kind":  slot.Kind,
		"size":  output.FormatBytes(int64(len(slot.Data))),
		"etag":  slot.ETag,
	}
	if slot.Kind == client.KindText {
		fields["text"] = string(slot.Data)
	}
	return p.Print(fields)
}

func slotSet(c *cli.Context) error {
	index, err := indexArg(c)
	if err != nil {
		return err
	}

	var (
		data []byte
		kind = c.String("kind")
	)
	if c.IsSet("text") {
		data = []byte(c.String("text"))
		if kind == "" {
			kind = client.KindText
		}
	} else {
		file := c.Args().Get(1)
		if file == "" {
			return errors.New("FILE or --text required")
		}
		if data, err = os.ReadFile(file); err != nil {
			return err
		}
		if kind == "" {
			if kind, err = kindFromPath(file); err != nil {
				return err
			}
		}
	}

	cl, err := apiClient(c)
	if err != nil {
		return err
	}
	info, err := cl.SetSlot(c.Context, index, kind, data)
	if err != nil {
		return err
	}
	return printer(c).Print(slotInfoView(*info))
}

// kindFromPath maps a file extension to a content kind.
func kindFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return client.KindImage, nil
	case ".gif":
		return client.KindAnimation, nil
	case ".txt":
		return client.KindText, nil
	default:
		return "", fmt.Errorf("cannot infer kind of %s, use --kind", path)
	}
}

func slotClear(c *cli.Context) error {
	index, err := indexArg(c)
	if err != nil {
		return err
	}
	cl, err := apiClient(c)
	if err != nil {
		return err
	}
	if err := cl.ClearSlot(c.Context, index); err != nil {
		return err
	}
	printer(c).Message("Slot %d cleared", index)
	return nil
}

func slotExport(c *cli.Context) error {
	return slotTransfer(c, "Exporting slots", "Exported slots to %s", (*client.Client).Export)
}

func slotImport(c *cli.Context) error {
	return slotTransfer(c, "Importing slots", "Imported slots from %s", (*client.Client).Import)
}

// slotTransfer runs an export or import of every slot. Table output shows
// a spinner on stderr while the server works.
func slotTransfer(c *cli.Context, busy, done string, fn func(*client.Client, context.Context, string) error) error {
	dir := c.Args().First()
	if dir == "" {
		return errors.New("DIR required")
	}
	cl, err := apiClient(c)
	if err != nil {
		return err
	}
	p := printer(c)
	if p.Format() != output.FormatTable {
		if err := fn(cl, c.Context, dir); err != nil {
			return err
		}
		p.Message(done, dir)
		return nil
	}

	spin := output.NewSpinner(c.App.ErrWriter, busy+"...")
	spin.Start()
	if err := fn(cl, c.Context, dir); err != nil {
		spin.Stop(busy + " failed")
		return err
	}
	spin.Stop(fmt.Sprintf(done, dir))
	return nil
}
