package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/yndnr/ledwall-go/internal/core/domain"
)

// StateRepository persists the last display state descriptor.
// storage.StateFile satisfies it.
type StateRepository interface {
	Save(d domain.Descriptor) error
	// Load returns found=false when nothing was saved yet.
	Load() (d domain.Descriptor, found bool, err error)
}

// Display is the part of DisplayService the recorder drives.
type Display interface {
	GoBlack(ctx context.Context) error
	GoLive(ctx context.Context) error
	GoSlot(ctx context.Context, index int) error
	GoRoundRobin(ctx context.Context) error
	Mode() domain.Mode
	OnTransition(fn TransitionObserver)
}

// StateRecorder persists every display mode change and replays persisted
// descriptors back onto the display.
type StateRecorder struct {
	display Display
	repo    StateRepository
	logger  *slog.Logger

	mu            sync.Mutex
	lastPersisted domain.Descriptor
}

// NewStateRecorder creates a recorder and subscribes it to display
// transitions.
func NewStateRecorder(display Display, repo StateRepository, logger *slog.Logger) *StateRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &StateRecorder{
		display:       display,
		repo:          repo,
		logger:        logger.With("component", "state_recorder"),
		lastPersisted: domain.Dark.Descriptor(),
	}
	display.OnTransition(r.observe)
	return r
}

// Current returns the descriptor of the display's current mode.
func (r *StateRecorder) Current() domain.Descriptor {
	return r.display.Mode().Descriptor()
}

// observe persists the new mode if it differs from the last persisted one.
// A failed save is logged and retried on the next change.
func (r *StateRecorder) observe(m domain.Mode) {
	d := m.Descriptor()

	r.mu.Lock()
	defer r.mu.Unlock()
	if d.Equal(r.lastPersisted) {
		return
	}
	if err := r.repo.Save(d); err != nil {
		r.logger.Error("persisting display state failed", "state", d.String(), "error", err)
		return
	}
	r.lastPersisted = d
	r.logger.Debug("display state persisted", "state", d.String())
}

// Visit drives the display to the mode described by d.
func (r *StateRecorder) Visit(ctx context.Context, d domain.Descriptor) error {
	m, err := d.Validate()
	if err != nil {
		return err
	}
	switch m.Kind {
	case domain.ModeLive:
		return r.display.GoLive(ctx)
	case domain.ModeSlot:
		return r.display.GoSlot(ctx, m.Slot)
	case domain.ModeRoundRobin:
		return r.display.GoRoundRobin(ctx)
	default:
		return r.display.GoBlack(ctx)
	}
}

// VisitJSON parses a JSON descriptor and visits it.
func (r *StateRecorder) VisitJSON(ctx context.Context, data []byte) error {
	d, err := domain.ParseDescriptor(data)
	if err != nil {
		return err
	}
	return r.Visit(ctx, d)
}

// Restore replays the persisted descriptor, if any. When nothing is stored
// or the stored state cannot be shown the display is set to black.
func (r *StateRecorder) Restore(ctx context.Context) error {
	d, found, err := r.repo.Load()
	if err != nil {
		r.logger.Warn("loading display state failed, starting dark", "error", err)
		return r.display.GoBlack(ctx)
	}
	if !found {
		r.logger.Info("no persisted display state, starting dark")
		return r.display.GoBlack(ctx)
	}

	r.mu.Lock()
	r.lastPersisted = d
	r.mu.Unlock()

	if err := r.Visit(ctx, d); err != nil {
		r.logger.Warn("restoring display state failed, starting dark", "state", d.String(), "error", err)
		return r.display.GoBlack(ctx)
	}
	r.logger.Info("display state restored", "state", d.String())
	return nil
}
