package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/yndnr/ledwall-go/internal/core/domain"
)

// Store keeps slot records in a map guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	records map[int]domain.Record

	// failWrites makes every Write fail; see WithFailingWrites.
	failWrites error
}

// Option configures the Store.
type Option func(*Store)

// WithRecords seeds the store.
func WithRecords(records map[int]domain.Record) Option {
	return func(s *Store) {
		for i, rec := range records {
			if !rec.IsEmpty() {
				s.records[i] = rec.Clone()
			}
		}
	}
}

// WithFailingWrites makes every Write return err. It exists to exercise
// write-failure paths.
func WithFailingWrites(err error) Option {
	return func(s *Store) {
		s.failWrites = err
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		records: make(map[int]domain.Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write stores a copy of rec.
func (s *Store) Write(_ context.Context, index int, rec domain.Record) error {
	if index < 0 {
		return fmt.Errorf("memory store: negative slot index %d", index)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites != nil {
		return s.failWrites
	}
	if rec.IsEmpty() {
		delete(s.records, index)
		return nil
	}
	s.records[index] = rec.Clone()
	return nil
}

// Read returns a copy of the record at index.
func (s *Store) Read(_ context.Context, index int) (domain.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[index]
	if !ok {
		return domain.Record{}, false, nil
	}
	return rec.Clone(), true, nil
}

// Len returns the number of non-empty slots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close implements the slot store interface.
func (s *Store) Close() error {
	return nil
}
