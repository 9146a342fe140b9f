package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/ledwall-go/internal/core/domain"
)

// slotKeyPrefix prefixes every slot key: "slot/0007".
const slotKeyPrefix = "slot/"

// BadgerStore implements SlotStore on Badger v3.
//
// Values are the kind byte followed by the payload. Empty records are
// stored as a deleted key.
type BadgerStore struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger *slog.Logger
	closed atomic.Bool

	lastGCTime atomic.Int64 // Unix milliseconds
	gcRuns     atomic.Uint64

	metricsLSMSize      prometheus.Gauge
	metricsValueLogSize prometheus.Gauge
	metricsGCRuns       prometheus.CounterFunc

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBadgerStore opens a Badger database for slot storage.
func NewBadgerStore(cfg BadgerConfig, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.Dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: logger}
	if cfg.CacheSize > 0 {
		opts.BlockCacheSize = cfg.CacheSize
	}
	if cfg.ValueLogFileSize > 0 {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}
	if cfg.NumMemtables > 0 {
		opts.NumMemtables = cfg.NumMemtables
	}
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	s := &BadgerStore{
		db:     db,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go s.gcLoop()

	logger.Info("badger slot store opened",
		"dir", cfg.Dir,
		"in_memory", cfg.Dir == "",
		"gc_interval", cfg.GCInterval)

	return s, nil
}

func slotKey(index int) []byte {
	return []byte(fmt.Sprintf("%s%04d", slotKeyPrefix, index))
}

// Write implements SlotStore.
func (s *BadgerStore) Write(_ context.Context, index int, rec domain.Record) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}

	key := slotKey(index)
	return s.db.Update(func(txn *badger.Txn) error {
		if rec.IsEmpty() {
			return txn.Delete(key)
		}
		value := make([]byte, 0, len(rec.Data)+1)
		value = append(value, byte(rec.Kind))
		value = append(value, rec.Data...)
		return txn.Set(key, value)
	})
}

// Read implements SlotStore.
func (s *BadgerStore) Read(_ context.Context, index int) (domain.Record, bool, error) {
	if err := checkIndex(index); err != nil {
		return domain.Record{}, false, err
	}
	if s.closed.Load() {
		return domain.Record{}, false, ErrClosed
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(slotKey(index))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, ErrKeyNotFound) {
		return domain.Record{}, false, nil
	}
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("badger: read slot %d: %w", index, err)
	}
	return decodeValue(index, value)
}

func decodeValue(index int, value []byte) (domain.Record, bool, error) {
	if len(value) == 0 {
		return domain.Record{}, false, fmt.Errorf("badger: slot %d: empty value", index)
	}
	rec, err := domain.NewRecord(domain.Kind(value[0]), value[1:])
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("badger: slot %d: %w", index, err)
	}
	return rec, true, nil
}

// Indices returns every index with a stored record, in ascending order.
func (s *BadgerStore) Indices() ([]int, error) {
	var out []int
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(slotKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var index int
			if _, err := fmt.Sscanf(string(it.Item().Key()), slotKeyPrefix+"%d", &index); err != nil {
				continue
			}
			out = append(out, index)
		}
		return nil
	})
	return out, err
}

// GC runs value log GC until nothing more can be rewritten.
func (s *BadgerStore) GC() error {
	if s.cfg.Dir == "" {
		return nil
	}
	start := time.Now()
	runs := 0
	for {
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) {
				break
			}
			return fmt.Errorf("badger: gc: %w", err)
		}
		runs++
	}

	s.lastGCTime.Store(time.Now().UnixMilli())
	s.gcRuns.Add(1)
	s.logger.Debug("badger gc completed", "rewrites", runs, "elapsed", time.Since(start))
	return nil
}

// Close implements SlotStore.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(s.stopCh)
	<-s.doneCh

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}
	s.logger.Info("badger slot store closed")
	return nil
}

// RegisterMetrics registers Badger size and GC metrics.
func (s *BadgerStore) RegisterMetrics(registry prometheus.Registerer) *BadgerStore {
	s.metricsLSMSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ledwall",
		Subsystem: "badger",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	})
	s.metricsValueLogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ledwall",
		Subsystem: "badger",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	})
	s.metricsGCRuns = prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "ledwall",
		Subsystem: "badger",
		Name:      "gc_runs_total",
		Help:      "Completed Badger value log GC passes",
	}, func() float64 { return float64(s.gcRuns.Load()) })

	registry.MustRegister(s.metricsLSMSize, s.metricsValueLogSize, s.metricsGCRuns)
	s.updateSizeMetrics()
	return s
}

func (s *BadgerStore) updateSizeMetrics() {
	if s.metricsLSMSize == nil || s.closed.Load() {
		return
	}
	lsm, vlog := s.db.Size()
	s.metricsLSMSize.Set(float64(lsm))
	s.metricsValueLogSize.Set(float64(vlog))
}

// gcLoop runs periodic GC and refreshes size metrics.
func (s *BadgerStore) gcLoop() {
	defer close(s.doneCh)

	interval, err := time.ParseDuration(s.cfg.GCInterval)
	if err != nil || interval <= 0 {
		s.logger.Warn("invalid gc_interval, using default 10m", "value", s.cfg.GCInterval)
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.GC(); err != nil {
				s.logger.Error("auto gc failed", "error", err)
			}
			s.updateSizeMetrics()
		case <-s.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
