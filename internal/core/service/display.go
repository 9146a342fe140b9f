package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/ledwall-go/internal/codec"
	"github.com/yndnr/ledwall-go/internal/core/domain"
	"github.com/yndnr/ledwall-go/internal/core/frame"
	"github.com/yndnr/ledwall-go/internal/core/playable"
	"github.com/yndnr/ledwall-go/internal/telemetry/metric"
)

// ErrDisplayClosed is returned by transitions after Close.
var ErrDisplayClosed = errors.New("display service closed")

// SlotSource resolves slot content for the display. SlotService satisfies it.
type SlotSource interface {
	GetSlot(ctx context.Context, index int) (domain.Record, error)
	NumSlots() int
}

// TransitionObserver is called after every successful mode transition.
type TransitionObserver func(mode domain.Mode)

// DisplayConfig holds configuration for DisplayService.
type DisplayConfig struct {
	// Width and Height are the matrix dimensions.
	Width  int
	Height int

	// Dwell is the minimum time round robin keeps a slot on screen.
	Dwell time.Duration

	// EmptyBackoff is how long round robin waits before rescanning when
	// every slot is empty.
	EmptyBackoff time.Duration

	// JoinTimeout bounds how long a transition waits for the previous
	// render task to stop. Exceeding it is fatal.
	JoinTimeout time.Duration

	// Text controls scrolling text slots.
	Text playable.TextOptions

	Logger  *slog.Logger
	Metrics *metric.Registry
}

// MinDwell is the shortest round robin dwell. A still image plays for
// exactly the dwell, so a zero dwell would rewrite it without pause.
const MinDwell = 10 * time.Millisecond

// DefaultDisplayConfig returns defaults for a width x height matrix.
func DefaultDisplayConfig(width, height int) DisplayConfig {
	return DisplayConfig{
		Width:        width,
		Height:       height,
		Dwell:        10 * time.Second,
		EmptyBackoff: 500 * time.Millisecond,
		JoinTimeout:  5 * time.Second,
		Text:         playable.DefaultTextOptions(),
	}
}

// DisplayService is the display mode state machine.
//
// It owns at most one render task. Every transition cancels the running
// task and waits for it to exit before writing to the sink or starting a
// new task, so no two producers ever write to the sink concurrently.
type DisplayService struct {
	slots   SlotSource
	codec   codec.Codec
	sink    frame.Sink
	cfg     DisplayConfig
	logger  *slog.Logger
	metrics *metric.Registry
	content *contentCache

	// mu serializes transitions and live frame pushes.
	mu        sync.Mutex
	task      *renderTask
	liveFrame *image.RGBA
	fatal     error
	observers []TransitionObserver

	modeMu sync.RWMutex
	mode   domain.Mode

	dwell     atomic.Int64 // time.Duration
	lastShown atomic.Int64

	// hooks observe render task lifetimes; set by tests only.
	hooks taskHooks
}

type taskHooks struct {
	started func(id string)
	stopped func(id string)
}

// NewDisplayService creates a DisplayService in Dark mode. The sink is not
// touched until the first transition.
func NewDisplayService(slots SlotSource, c codec.Codec, sink frame.Sink, cfg DisplayConfig) (*DisplayService, error) {
	if slots == nil || c == nil || sink == nil {
		return nil, fmt.Errorf("display service: slots, codec and sink are required")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("display service: invalid matrix size %dx%d", cfg.Width, cfg.Height)
	}
	def := DefaultDisplayConfig(cfg.Width, cfg.Height)
	if cfg.EmptyBackoff <= 0 {
		cfg.EmptyBackoff = def.EmptyBackoff
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = def.JoinTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.NewRegistry()
	}

	s := &DisplayService{
		slots:   slots,
		codec:   c,
		sink:    sink,
		cfg:     cfg,
		logger:  cfg.Logger.With("component", "display"),
		metrics: cfg.Metrics,
		content: newContentCache(),
		mode:    domain.Dark,
	}
	s.SetDwell(cfg.Dwell)
	return s, nil
}

// Mode returns the current mode.
func (s *DisplayService) Mode() domain.Mode {
	s.modeMu.RLock()
	defer s.modeMu.RUnlock()
	return s.mode
}

// Dwell returns the current round robin dwell time.
func (s *DisplayService) Dwell() time.Duration {
	return time.Duration(s.dwell.Load())
}

// SetDwell changes the round robin dwell time. It applies from the next
// slot shown. Values below MinDwell are raised to MinDwell.
func (s *DisplayService) SetDwell(d time.Duration) {
	if d < MinDwell {
		d = MinDwell
	}
	s.dwell.Store(int64(d))
}

// OnTransition registers fn to be called after every successful
// transition. Observers run while the transition lock is held and must not
// start transitions themselves.
func (s *DisplayService) OnTransition(fn TransitionObserver) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// GoBlack stops any render task and blanks the sink.
func (s *DisplayService) GoBlack(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepare(); err != nil {
		return err
	}
	if err := s.write(s.blank()); err != nil {
		return s.fail(domain.Dark, err)
	}
	s.setMode(domain.Dark)
	return nil
}

// GoLive stops any render task and shows the latest live frame, or a black
// filler when no live frame arrived yet.
func (s *DisplayService) GoLive(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepare(); err != nil {
		return err
	}
	var img image.Image = s.blank()
	if s.liveFrame != nil {
		img = s.liveFrame
	}
	if err := s.write(img); err != nil {
		return s.fail(domain.Live, err)
	}
	s.setMode(domain.Live)
	return nil
}

// GoSlot shows slot index. Images are written once; animations and text
// run in a looping render task until the next transition.
//
// An out-of-range index is rejected without touching the current mode.
// For an empty, unreadable or undecodable slot the previous task is still
// stopped, the sink is blanked and the service is left in Dark mode.
func (s *DisplayService) GoSlot(ctx context.Context, index int) error {
	if index < 0 || index >= s.slots.NumSlots() {
		return domain.ErrInvalidIndex.WithDetailsf("index %d not in [0, %d)", index, s.slots.NumSlots())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fatal != nil {
		return s.fatal
	}

	// Resolve before stopping the current task so the old content stays up
	// while the new one decodes.
	p, resolveErr := s.resolve(ctx, index)

	if err := s.prepare(); err != nil {
		return err
	}
	target := domain.ShowSlot(index)
	if resolveErr != nil {
		return s.fail(target, resolveErr)
	}

	s.lastShown.Store(int64(index))
	if still, ok := p.(*playable.Still); ok {
		if err := s.write(still.Frame); err != nil {
			return s.fail(target, err)
		}
	} else {
		s.startTask(func(ctx context.Context, sink frame.Sink) error {
			return p.Play(ctx, sink, playable.Options{Loop: true})
		})
	}
	s.setMode(target)
	return nil
}

// GoRoundRobin starts cycling through non-empty slots, beginning with the
// last slot shown.
func (s *DisplayService) GoRoundRobin(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prepare(); err != nil {
		return err
	}
	start := int(s.lastShown.Load())
	s.startTask(func(ctx context.Context, sink frame.Sink) error {
		return s.roundRobin(ctx, sink, start)
	})
	s.setMode(domain.RoundRobin)
	return nil
}

// ProcessLive decodes an externally supplied frame and shows it if the
// display is in Live mode. Frames arriving in any other mode are dropped
// and not kept for a later GoLive. It reports whether the frame was shown.
func (s *DisplayService) ProcessLive(_ context.Context, data []byte) (bool, error) {
	img, err := s.codec.DecodeImage(data)
	if err != nil {
		s.metrics.LiveFrames.WithLabelValues("corrupt").Inc()
		return false, domain.ErrContentCorrupt.WithDetails("live frame").WithCause(err)
	}
	return s.ProcessLiveFrame(img)
}

// ProcessLiveFrame is ProcessLive for an already decoded frame.
func (s *DisplayService) ProcessLiveFrame(img image.Image) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Mode().Kind != domain.ModeLive || s.fatal != nil {
		s.metrics.LiveFrames.WithLabelValues("dropped").Inc()
		return false, nil
	}
	cp := frame.Copy(img)
	if err := s.write(cp); err != nil {
		return false, fmt.Errorf("live frame: %w", err)
	}
	s.liveFrame = cp
	s.metrics.LiveFrames.WithLabelValues("shown").Inc()
	return true, nil
}

// Err returns the error that stopped the display, or nil while
// transitions are accepted.
func (s *DisplayService) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatal
}

// Close stops the render task. Further transitions fail with
// ErrDisplayClosed.
func (s *DisplayService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if errors.Is(s.fatal, ErrDisplayClosed) {
		return nil
	}
	err := s.stopTask()
	if s.fatal == nil {
		s.fatal = ErrDisplayClosed
	}
	s.logger.Info("display closed")
	return err
}

// prepare checks the service is usable and stops the running task.
// Must be called with mu held.
func (s *DisplayService) prepare() error {
	if s.fatal != nil {
		return s.fatal
	}
	return s.stopTask()
}

// resolve loads and decodes slot index.
func (s *DisplayService) resolve(ctx context.Context, index int) (playable.Playable, error) {
	rec, err := s.slots.GetSlot(ctx, index)
	if err != nil {
		return nil, err
	}
	if rec.IsEmpty() {
		return nil, domain.ErrSlotUnavailable.WithDetailsf("slot %d is empty", index)
	}
	return s.decode(index, rec)
}

func (s *DisplayService) decode(index int, rec domain.Record) (playable.Playable, error) {
	return s.content.get(index, rec, func() (playable.Playable, error) {
		return playable.New(rec, s.codec, s.cfg.Text)
	})
}

// fail leaves the service dark after an aborted transition.
// Must be called with mu held and no task running.
func (s *DisplayService) fail(target domain.Mode, err error) error {
	if werr := s.write(s.blank()); werr != nil {
		s.logger.Warn("blanking sink failed", "error", werr)
	}
	s.modeMu.Lock()
	s.mode = domain.Dark
	s.modeMu.Unlock()

	code := domain.GetErrorCode(err)
	if code == "" {
		code = "sink"
	}
	s.metrics.TransitionFailures.WithLabelValues(code).Inc()
	s.logger.Warn("transition aborted", "target", target.String(), "error", err)
	return err
}

// setMode records a completed transition and notifies observers.
// Must be called with mu held.
func (s *DisplayService) setMode(m domain.Mode) {
	s.modeMu.Lock()
	s.mode = m
	s.modeMu.Unlock()

	s.metrics.ModeTransitions.WithLabelValues(m.Kind.String()).Inc()
	s.logger.Info("display mode changed", "mode", m.String())
	for _, fn := range s.observers {
		fn(m)
	}
}

func (s *DisplayService) blank() *image.RGBA {
	return frame.Blank(s.cfg.Width, s.cfg.Height)
}

// write pushes a frame from the control goroutine. Must be called with mu
// held and no task running.
func (s *DisplayService) write(img image.Image) error {
	if err := s.sink.SetFrame(img); err != nil {
		return err
	}
	s.metrics.FramesWritten.Inc()
	return nil
}

// ============================================================================
// Render tasks
// ============================================================================

// renderTask is the handle of the single background producer.
type renderTask struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
	gate   *gatedSink
}

// errGateClosed is returned to a task that writes after being cancelled.
var errGateClosed = errors.New("render task cancelled")

// gatedSink forwards frames until closed. A task that outlives its join
// timeout is cut off from the sink by closing the gate.
type gatedSink struct {
	closed  atomic.Bool
	sink    frame.Sink
	written func()
}

func (g *gatedSink) SetFrame(img image.Image) error {
	if g.closed.Load() {
		return errGateClosed
	}
	if err := g.sink.SetFrame(img); err != nil {
		return err
	}
	g.written()
	return nil
}

func (g *gatedSink) close() {
	g.closed.Store(true)
}

// startTask runs fn in a new render task. Must be called with mu held and
// no task running.
func (s *DisplayService) startTask(fn func(ctx context.Context, sink frame.Sink) error) {
	ctx, cancel := context.WithCancel(context.Background())
	t := &renderTask{
		id:     ulid.Make().String(),
		cancel: cancel,
		done:   make(chan struct{}),
		gate: &gatedSink{
			sink:    s.sink,
			written: s.metrics.FramesWritten.Inc,
		},
	}
	s.task = t
	s.metrics.RenderTasksStarted.Inc()
	s.metrics.RenderTasksActive.Inc()

	go func() {
		defer close(t.done)
		defer s.metrics.RenderTasksActive.Dec()
		if s.hooks.started != nil {
			s.hooks.started(t.id)
		}
		if s.hooks.stopped != nil {
			defer s.hooks.stopped(t.id)
		}

		err := fn(ctx, t.gate)
		switch {
		case err == nil, playable.IsCancelled(err), errors.Is(err, errGateClosed):
			s.logger.Debug("render task finished", "task", t.id)
		default:
			s.logger.Warn("render task failed", "task", t.id, "error", err)
		}
	}()
	s.logger.Debug("render task started", "task", t.id)
}

// stopTask cuts the running task off from the sink, cancels it and waits
// for it to exit. The gate closes before cancellation so that nothing the
// task writes after observing ctx.Done reaches the sink.
// Must be called with mu held.
func (s *DisplayService) stopTask() error {
	t := s.task
	if t == nil {
		return nil
	}
	s.task = nil

	t.gate.close()
	t.cancel()

	timer := time.NewTimer(s.cfg.JoinTimeout)
	defer timer.Stop()
	select {
	case <-t.done:
		return nil
	case <-timer.C:
		s.fatal = domain.ErrRenderStalled.WithDetailsf("task %s still running after %s", t.id, s.cfg.JoinTimeout)
		s.logger.Error("render task did not stop, display disabled", "task", t.id, "timeout", s.cfg.JoinTimeout)
		return s.fatal
	}
}

// roundRobin shows each non-empty slot for at least the dwell time, in
// index order starting at start, forever. Slots that are empty or fail to
// load are skipped. When nothing can be shown it sleeps EmptyBackoff before
// scanning again.
func (s *DisplayService) roundRobin(ctx context.Context, sink frame.Sink, start int) error {
	next := start
	for {
		n := s.slots.NumSlots()
		shown := false
		for step := 0; step < n; step++ {
			i := (next + step) % n
			rec, err := s.slots.GetSlot(ctx, i)
			if err == nil && rec.IsEmpty() {
				continue
			}
			var p playable.Playable
			if err == nil {
				p, err = s.decode(i, rec)
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Warn("round robin skipping slot", "index", i, "error", err)
				continue
			}

			s.lastShown.Store(int64(i))
			if err := p.Play(ctx, sink, playable.Options{Minimum: s.Dwell()}); err != nil {
				return err
			}
			next = (i + 1) % n
			shown = true
			break
		}
		if !shown {
			if err := sleepCtx(ctx, s.cfg.EmptyBackoff); err != nil {
				return err
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ============================================================================
// Decoded content cache
// ============================================================================

// contentCache keeps decoded playables per slot, keyed by payload digest,
// so round robin does not decode the same GIF on every pass. Playables are
// immutable and safe to share between tasks.
type contentCache struct {
	mu      sync.Mutex
	entries map[int]cachedContent
}

type cachedContent struct {
	digest string
	p      playable.Playable
}

func newContentCache() *contentCache {
	return &contentCache{entries: make(map[int]cachedContent)}
}

func (c *contentCache) get(index int, rec domain.Record, build func() (playable.Playable, error)) (playable.Playable, error) {
	digest := rec.Digest()

	c.mu.Lock()
	e, ok := c.entries[index]
	c.mu.Unlock()
	if ok && e.digest == digest {
		return e.p, nil
	}

	p, err := build()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[index] = cachedContent{digest: digest, p: p}
	c.mu.Unlock()
	return p, nil
}
