package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/yndnr/ledwall-go/internal/core/domain"
	"github.com/yndnr/ledwall-go/internal/storage"
	"github.com/yndnr/ledwall-go/internal/telemetry/metric"
)

// SlotRepository is the slot persistence the SlotService delegates to.
// storage.SlotStore implementations satisfy it.
type SlotRepository interface {
	Write(ctx context.Context, index int, rec domain.Record) error
	Read(ctx context.Context, index int) (domain.Record, bool, error)
}

// SlotObserver is called after every successful SetSlot.
type SlotObserver func(index int, rec domain.Record)

// SlotServiceConfig holds configuration for SlotService.
type SlotServiceConfig struct {
	// NumSlots is the number of slots, N. Indices are in [0, N).
	NumSlots int

	Logger  *slog.Logger
	Metrics *metric.Registry
}

// SlotService owns the in-process view of all slots.
//
// Records are cached after the first lookup, including explicit empty
// records, so known-empty slots never hit the repository again. Writes go
// to the repository first; the cache only changes once the write succeeded.
type SlotService struct {
	repo    SlotRepository
	n       int
	logger  *slog.Logger
	metrics *metric.Registry

	// writeMu serializes mutations so observers see them in order.
	writeMu sync.Mutex

	mu    sync.RWMutex
	cache []*domain.Record // nil entry: unknown

	obsMu     sync.RWMutex
	observers map[uint64]SlotObserver
	nextObs   uint64
}

// NewSlotService creates a SlotService.
func NewSlotService(repo SlotRepository, cfg SlotServiceConfig) (*SlotService, error) {
	if repo == nil {
		return nil, fmt.Errorf("slot service: repository is required")
	}
	if cfg.NumSlots <= 0 {
		return nil, fmt.Errorf("slot service: num_slots must be positive, got %d", cfg.NumSlots)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.NewRegistry()
	}
	return &SlotService{
		repo:      repo,
		n:         cfg.NumSlots,
		logger:    cfg.Logger.With("component", "slots"),
		metrics:   cfg.Metrics,
		cache:     make([]*domain.Record, cfg.NumSlots),
		observers: make(map[uint64]SlotObserver),
	}, nil
}

// NumSlots returns N.
func (s *SlotService) NumSlots() int {
	return s.n
}

func (s *SlotService) checkIndex(index int) error {
	if index < 0 || index >= s.n {
		return domain.ErrInvalidIndex.WithDetailsf("index %d not in [0, %d)", index, s.n)
	}
	return nil
}

// SetSlot stores data of the given kind at index. KindEmpty with no data
// clears the slot.
//
// Errors: ErrInvalidIndex, ErrInvalidKind, ErrStoreWriteFailed. On any error
// the cache keeps its previous value.
func (s *SlotService) SetSlot(ctx context.Context, index int, kind domain.Kind, data []byte) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	rec, err := domain.NewRecord(kind, data)
	if err != nil {
		return err
	}
	rec = rec.Clone()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.Write(ctx, index, rec); err != nil {
		s.metrics.SlotWrites.WithLabelValues("failed").Inc()
		s.logger.Warn("slot write failed", "index", index, "kind", kind, "error", err)
		return domain.ErrStoreWriteFailed.WithDetailsf("slot %d", index).WithCause(err)
	}
	s.metrics.SlotWrites.WithLabelValues("ok").Inc()

	s.mu.Lock()
	s.cache[index] = &rec
	s.mu.Unlock()
	s.updatePopulated()

	s.logger.Info("slot updated", "index", index, "kind", kind, "size", len(rec.Data))
	s.notify(index, rec)
	return nil
}

// ClearSlot sets index to empty.
func (s *SlotService) ClearSlot(ctx context.Context, index int) error {
	return s.SetSlot(ctx, index, domain.KindEmpty, nil)
}

// GetSlot returns the record at index, hydrating the cache from the
// repository on first access. A slot the repository knows nothing about is
// cached and returned as empty.
//
// Errors: ErrInvalidIndex, ErrSlotUnavailable when the repository read fails.
func (s *SlotService) GetSlot(ctx context.Context, index int) (domain.Record, error) {
	if err := s.checkIndex(index); err != nil {
		return domain.Record{}, err
	}

	s.mu.RLock()
	cached := s.cache[index]
	s.mu.RUnlock()
	if cached != nil {
		s.metrics.SlotCacheLookups.WithLabelValues("hit").Inc()
		return *cached, nil
	}
	s.metrics.SlotCacheLookups.WithLabelValues("miss").Inc()

	rec, found, err := s.repo.Read(ctx, index)
	if err != nil {
		s.logger.Warn("slot read failed", "index", index, "error", err)
		return domain.Record{}, domain.ErrSlotUnavailable.WithDetailsf("slot %d", index).WithCause(err)
	}
	if !found {
		rec = domain.EmptyRecord()
	}

	s.mu.Lock()
	// A concurrent SetSlot wins over a hydration that started before it.
	if s.cache[index] == nil {
		s.cache[index] = &rec
	} else {
		rec = *s.cache[index]
	}
	s.mu.Unlock()
	s.updatePopulated()

	return rec, nil
}

// HaveSlot reports whether index resolves to non-empty content.
// Lookup errors count as not having the slot.
func (s *SlotService) HaveSlot(ctx context.Context, index int) bool {
	rec, err := s.GetSlot(ctx, index)
	return err == nil && !rec.IsEmpty()
}

// List returns a summary of every slot in index order.
func (s *SlotService) List(ctx context.Context) ([]domain.SlotInfo, error) {
	out := make([]domain.SlotInfo, 0, s.n)
	for i := 0; i < s.n; i++ {
		rec, err := s.GetSlot(ctx, i)
		if err != nil {
			return nil, err
		}
		out = append(out, rec.Info(i))
	}
	return out, nil
}

// Subscribe registers fn to run after every successful SetSlot and returns a
// function that removes it. Observers run synchronously on the writer's
// goroutine and must not call SetSlot.
func (s *SlotService) Subscribe(fn SlotObserver) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

func (s *SlotService) notify(index int, rec domain.Record) {
	s.obsMu.RLock()
	observers := make([]SlotObserver, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.obsMu.RUnlock()

	for _, fn := range observers {
		fn(index, rec)
	}
}

func (s *SlotService) updatePopulated() {
	s.mu.RLock()
	n := 0
	for _, rec := range s.cache {
		if rec != nil && !rec.IsEmpty() {
			n++
		}
	}
	s.mu.RUnlock()
	s.metrics.SlotsPopulated.Set(float64(n))
}

// SaveAll writes every non-empty slot to dir as {index}.{ext} and removes
// files left over for slots that are now empty.
func (s *SlotService) SaveAll(ctx context.Context, dir string) error {
	out, err := storage.NewFileStore(dir)
	if err != nil {
		return domain.ErrStoreWriteFailed.WithCause(err)
	}

	saved := 0
	for i := 0; i < s.n; i++ {
		rec, err := s.GetSlot(ctx, i)
		if err != nil {
			return err
		}
		if err := out.Write(ctx, i, rec); err != nil {
			return domain.ErrStoreWriteFailed.WithDetailsf("export slot %d", i).WithCause(err)
		}
		if !rec.IsEmpty() {
			saved++
		}
	}
	s.logger.Info("slots exported", "dir", dir, "saved", saved)
	return nil
}

// LoadAll replaces every slot with the content of dir. An index without a
// file in dir becomes empty, so after a successful load no slot is unknown.
func (s *SlotService) LoadAll(ctx context.Context, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrSlotUnavailable.WithDetailsf("import dir %s does not exist", dir)
		}
		return domain.ErrSlotUnavailable.WithCause(err)
	}
	if !info.IsDir() {
		return domain.ErrSlotUnavailable.WithDetailsf("%s is not a directory", dir)
	}

	in, err := storage.NewFileStore(dir)
	if err != nil {
		return domain.ErrSlotUnavailable.WithCause(err)
	}
	if indices, err := in.Indices(); err == nil {
		for _, i := range indices {
			if i >= s.n {
				s.logger.Warn("ignoring import file beyond slot range", "index", i, "num_slots", s.n)
			}
		}
	}

	loaded := 0
	for i := 0; i < s.n; i++ {
		rec, found, err := in.Read(ctx, i)
		if err != nil {
			return domain.ErrSlotUnavailable.WithDetailsf("import slot %d", i).WithCause(err)
		}
		if !found {
			rec = domain.EmptyRecord()
		}
		if err := s.SetSlot(ctx, i, rec.Kind, rec.Data); err != nil {
			return err
		}
		if !rec.IsEmpty() {
			loaded++
		}
	}
	s.logger.Info("slots imported", "dir", dir, "loaded", loaded)
	return nil
}
