package command

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/ledwall-go/internal/cli/connection"
	"github.com/yndnr/ledwall-go/internal/codec"
	"github.com/yndnr/ledwall-go/internal/core/domain"
	"github.com/yndnr/ledwall-go/internal/core/frame"
	"github.com/yndnr/ledwall-go/internal/core/service"
	"github.com/yndnr/ledwall-go/internal/server/httpserver"
	"github.com/yndnr/ledwall-go/internal/server/httpserver/handler"
	"github.com/yndnr/ledwall-go/internal/storage/memory"
)

// testAPI is a real API server over a memory store.
type testAPI struct {
	url     string
	dir     string
	slots   *service.SlotService
	display *service.DisplayService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	slots, err := service.NewSlotService(memory.New(), service.SlotServiceConfig{NumSlots: 4, Logger: log})
	if err != nil {
		t.Fatal(err)
	}
	c, err := codec.New(codec.DefaultConfig(8, 4))
	if err != nil {
		t.Fatal(err)
	}
	preview := frame.NewPreview(8, 4, nil)
	cfg := service.DefaultDisplayConfig(8, 4)
	cfg.Logger = log
	cfg.Dwell = 10 * time.Millisecond
	display, err := service.NewDisplayService(slots, c, preview, cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { display.Close() })

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Handler: handler.Config{
			Slots:   slots,
			Display: display,
			State:   service.NewStateRecorder(display, nopState{}, log),
			Preview: preview,
		},
		Logger: log,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testAPI{url: srv.URL, dir: t.TempDir(), slots: slots, display: display}
}

type nopState struct{}

func (nopState) Save(domain.Descriptor) error           { return nil }
func (nopState) Load() (domain.Descriptor, bool, error) { return domain.Descriptor{}, false, nil }

// run executes one command line against api and returns stdout.
func (a *testAPI) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return a.runWith(t, nil, args...)
}

// runWith is run with a shared connection manager.
func (a *testAPI) runWith(t *testing.T, mgr *connection.Manager, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(&out, io.Discard, mgr)
	argv := append([]string{appName, "--config", a.configFile(), "--server", a.url}, args...)
	err := app.RunContext(context.Background(), argv)
	return out.String(), err
}

func (a *testAPI) configFile() string {
	return filepath.Join(a.dir, "cli.yaml")
}

// writePNG writes a solid 8x4 PNG and returns its path.
func writePNG(t *testing.T, dir, name string, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
