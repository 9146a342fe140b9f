package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ledwall-go/internal/codec"
	"github.com/yndnr/ledwall-go/internal/core/domain"
	"github.com/yndnr/ledwall-go/internal/core/frame"
	"github.com/yndnr/ledwall-go/internal/core/playable"
	"github.com/yndnr/ledwall-go/internal/core/service"
	"github.com/yndnr/ledwall-go/internal/infra/buildinfo"
	"github.com/yndnr/ledwall-go/internal/infra/confloader"
	"github.com/yndnr/ledwall-go/internal/infra/shutdown"
	"github.com/yndnr/ledwall-go/internal/infra/tlsroots"
	"github.com/yndnr/ledwall-go/internal/server/config"
	"github.com/yndnr/ledwall-go/internal/server/httpserver"
	"github.com/yndnr/ledwall-go/internal/server/httpserver/handler"
	"github.com/yndnr/ledwall-go/internal/server/localserver"
	"github.com/yndnr/ledwall-go/internal/storage"
	"github.com/yndnr/ledwall-go/internal/storage/memory"
	"github.com/yndnr/ledwall-go/internal/storage/remote"
	"github.com/yndnr/ledwall-go/internal/telemetry/logger"
	"github.com/yndnr/ledwall-go/internal/telemetry/metric"
)

func main() {
	app := &cli.App{
		Name:    "ledwall-server",
		Usage:   "LED matrix display daemon",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the configuration file",
				EnvVars: []string{"LEDWALL_CONFIG"},
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.Context, c.String("config"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogLogger := log.Slog()

	info := buildinfo.Get()
	log.Info("starting ledwall-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	metrics := metric.NewRegistry()
	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout, slogLogger)

	// Hooks run in reverse order: HTTP stops first, the store closes last.
	store, err := openStore(ctx, cfg.Storage, slogLogger, metrics)
	if err != nil {
		return fmt.Errorf("open slot store: %w", err)
	}
	shutdownHandler.OnShutdown("slot store", func(context.Context) error {
		return store.Close()
	})
	abort := func(err error) error {
		_ = shutdownHandler.Shutdown("startup failed")
		return err
	}

	app, err := buildApp(ctx, cfg, store, slogLogger, metrics)
	if err != nil {
		return abort(err)
	}
	shutdownHandler.OnShutdown("display", func(context.Context) error {
		return app.display.Close()
	})

	httpCfg := httpserver.Config{
		Addr:         cfg.Server.HTTP.Addr,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
	}
	if cfg.Server.HTTP.TLSCertFile != "" {
		reloader, err := tlsroots.NewReloader(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithLogger(slogLogger))
		if err != nil {
			return abort(err)
		}
		if err := reloader.Start(); err != nil {
			log.Warn("certificate reload disabled", "error", err)
		}
		shutdownHandler.OnShutdown("certificate reloader", func(context.Context) error {
			return reloader.Stop()
		})
		httpCfg.TLSConfig = reloader.ServerConfig()
	}

	httpServer := httpserver.New(httpCfg, app.router)
	ln, err := net.Listen("tcp", cfg.Server.HTTP.Addr)
	if err != nil {
		return abort(fmt.Errorf("listen %s: %w", cfg.Server.HTTP.Addr, err))
	}
	shutdownHandler.OnShutdown("http server", httpServer.Shutdown)
	go func() {
		log.Info("HTTP server listening", "addr", ln.Addr().String(), "tls", httpServer.TLS())
		if err := httpServer.Serve(ln); err != nil {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger("http server failed")
		}
	}()

	if path := cfg.Server.Local.SocketPath; path != "" {
		local := localserver.New(path, app.router, slogLogger)
		if err := local.Listen(); err != nil {
			return abort(err)
		}
		shutdownHandler.OnShutdown("local socket", local.Shutdown)
		go func() {
			if err := local.Serve(); err != nil {
				log.Error("local socket error", "error", err)
			}
		}()
	}

	if configFile != "" {
		watcher, err := watchConfig(configFile, app.display, slogLogger)
		if err != nil {
			log.Warn("configuration hot reload disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("server started, press Ctrl+C to stop", "mode", app.display.Mode().String())
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger initializes the structured logger and makes it the default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	slog.SetDefault(log.Slog())
	return log, nil
}

// openStore opens the configured slot store backend.
func openStore(ctx context.Context, cfg config.StorageSection, log *slog.Logger, metrics *metric.Registry) (storage.SlotStore, error) {
	switch cfg.Backend {
	case storage.BackendMemory:
		log.Warn("memory slot store: content is lost on restart")
		return memory.New(), nil

	case storage.BackendFile:
		return storage.NewFileStore(cfg.DataDir)

	case storage.BackendBadger:
		bcfg := storage.DefaultBadgerConfig(filepath.Join(cfg.DataDir, "badger"))
		if cfg.Badger.GCInterval != "" {
			bcfg.GCInterval = cfg.Badger.GCInterval
		}
		if cfg.Badger.CacheSize > 0 {
			bcfg.CacheSize = cfg.Badger.CacheSize
		}
		bcfg.SyncWrites = cfg.Badger.SyncWrites
		s, err := storage.NewBadgerStore(bcfg, log)
		if err != nil {
			return nil, err
		}
		return s.RegisterMetrics(metrics.Registerer()), nil

	case storage.BackendRemote:
		rcfg := remote.Config{Addr: cfg.Remote.Addr, Timeout: cfg.Remote.Timeout}
		if cfg.Remote.CAFile != "" {
			tlsCfg, err := tlsroots.ClientConfig(cfg.Remote.CAFile)
			if err != nil {
				return nil, err
			}
			rcfg.TLS = tlsCfg
		}
		s, err := remote.New(rcfg)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, cfg.Remote.Timeout)
		defer cancel()
		if err := s.Ping(pingCtx); err != nil {
			log.Warn("remote slot store unreachable, slots read as empty until it answers",
				"addr", cfg.Remote.Addr, "error", err)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// application holds the wired services behind the HTTP API.
type application struct {
	slots    *service.SlotService
	display  *service.DisplayService
	recorder *service.StateRecorder
	preview  *frame.Preview
	router   http.Handler
}

// buildApp wires the slot manager, codec, supervisor, state recorder and
// router over store, then restores the persisted display state.
func buildApp(ctx context.Context, cfg *config.ServerConfig, store storage.SlotStore, log *slog.Logger, metrics *metric.Registry) (*application, error) {
	d := cfg.Display

	slots, err := service.NewSlotService(store, service.SlotServiceConfig{
		NumSlots: d.NumSlots,
		Logger:   log,
		Metrics:  metrics,
	})
	if err != nil {
		return nil, err
	}

	ccfg := codec.DefaultConfig(d.Width, d.Height)
	if ccfg.Foreground, err = codec.ParseColor(d.Foreground); err != nil {
		return nil, err
	}
	if ccfg.Background, err = codec.ParseColor(d.Background); err != nil {
		return nil, err
	}
	c, err := codec.New(ccfg)
	if err != nil {
		return nil, err
	}

	// The preview stands in for the panel driver.
	preview := frame.NewPreview(d.Width, d.Height, nil)

	dcfg := service.DefaultDisplayConfig(d.Width, d.Height)
	dcfg.Dwell = d.MinimumSlotTime
	dcfg.EmptyBackoff = d.EmptyBackoff
	dcfg.JoinTimeout = d.JoinTimeout
	dcfg.Text = playable.TextOptions{
		Speed: d.Text.Speed,
		FPS:   max(1, int(math.Round(d.Text.FPS))),
	}
	dcfg.Logger = log
	dcfg.Metrics = metrics
	display, err := service.NewDisplayService(slots, c, preview, dcfg)
	if err != nil {
		return nil, err
	}
	metrics.Registerer().MustRegister(metric.NewModeCollector(display.Mode))

	var repo service.StateRepository = &volatileState{}
	if cfg.Storage.StateFile != "" {
		repo = storage.NewStateFile(cfg.Storage.StateFile)
	} else {
		log.Warn("storage.state_file is empty; display state is not persisted")
	}
	recorder := service.NewStateRecorder(display, repo, log)
	if err := recorder.Restore(ctx); err != nil {
		log.Warn("restoring display state failed", "error", err)
	}

	routerCfg := httpserver.DefaultRouterConfig()
	routerCfg.Handler = handler.Config{
		Slots:        slots,
		Display:      display,
		State:        recorder,
		Preview:      preview,
		Logger:       log,
		MaxBodyBytes: cfg.Server.HTTP.MaxBodyBytes,
		LiveMaxFPS:   d.Live.MaxFPS,
		Ready:        readiness(store, display),
	}
	routerCfg.Metrics = metrics
	routerCfg.Logger = log
	routerCfg.CORSAllowedOrigins = cfg.Server.HTTP.CORSOrigins
	routerCfg.RateLimit = cfg.Server.HTTP.RateLimit
	routerCfg.RateBurst = cfg.Server.HTTP.RateBurst

	return &application{
		slots:    slots,
		display:  display,
		recorder: recorder,
		preview:  preview,
		router:   httpserver.NewRouter(routerCfg),
	}, nil
}

// pinger is implemented by stores with a reachable upstream.
type pinger interface {
	Ping(ctx context.Context) error
}

// readiness fails once the display stalled and while a remote store is
// unreachable.
func readiness(store storage.SlotStore, display *service.DisplayService) func() error {
	return func() error {
		if display != nil {
			if err := display.Err(); err != nil {
				return err
			}
		}
		if p, ok := store.(pinger); ok {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				return fmt.Errorf("slot store: %w", err)
			}
		}
		return nil
	}
}

// watchConfig applies log.level and display.minimum_slot_time when the
// file changes. Other settings need a restart.
func watchConfig(path string, display *service.DisplayService, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}
	w.OnChange(func(string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("configuration reload rejected", "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		display.SetDwell(cfg.Display.MinimumSlotTime)
		log.Info("configuration reloaded",
			"log_level", cfg.Log.Level,
			"minimum_slot_time", cfg.Display.MinimumSlotTime)
	})
	w.StartAsync()
	return w, nil
}

// volatileState keeps the descriptor in memory when no state file is
// configured.
type volatileState struct {
	mu    sync.Mutex
	d     domain.Descriptor
	found bool
}

func (s *volatileState) Save(d domain.Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d, s.found = d, true
	return nil
}

func (s *volatileState) Load() (domain.Descriptor, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d, s.found, nil
}
