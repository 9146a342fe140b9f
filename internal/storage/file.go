package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/yndnr/ledwall-go/internal/core/domain"
)

// FileStore keeps one file per non-empty slot, named {index}.{ext}.
// The layout is the same one used by bulk export, so an export directory
// can be served directly.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// SlotFileName returns the file name for a record of kind at index.
func SlotFileName(index int, kind domain.Kind) string {
	return strconv.Itoa(index) + "." + kind.Ext()
}

// Write implements SlotStore. The new file is written atomically before
// files of other kinds for the same index are removed. If a removal fails
// a newly created file is removed again, so the slot keeps its previous
// content on disk.
func (s *FileStore) Write(_ context.Context, index int, rec domain.Record) error {
	if err := checkIndex(index); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.IsEmpty() {
		return s.removeOthers(index, rec.Kind)
	}

	path := filepath.Join(s.dir, SlotFileName(index, rec.Kind))
	_, statErr := os.Stat(path)
	created := errors.Is(statErr, fs.ErrNotExist)
	if err := atomic.WriteFile(path, bytes.NewReader(rec.Data)); err != nil {
		return fmt.Errorf("file store: write %s: %w", path, err)
	}
	if err := s.removeOthers(index, rec.Kind); err != nil {
		if created {
			if rbErr := os.Remove(path); rbErr != nil {
				return errors.Join(err, fmt.Errorf("file store: roll back %s: %w", path, rbErr))
			}
		}
		return err
	}
	return nil
}

// Read implements SlotStore.
func (s *FileStore) Read(_ context.Context, index int) (domain.Record, bool, error) {
	if err := checkIndex(index); err != nil {
		return domain.Record{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, kind := range domain.Kinds {
		path := filepath.Join(s.dir, SlotFileName(index, kind))
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return domain.Record{}, false, fmt.Errorf("file store: read %s: %w", path, err)
		}
		rec, err := domain.NewRecord(kind, data)
		if err != nil {
			// A zero-length file carries no content.
			return domain.EmptyRecord(), true, nil
		}
		return rec, true, nil
	}
	return domain.Record{}, false, nil
}

// Indices returns the slot indices that have a file, in no particular order.
func (s *FileStore) Indices() ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("file store: list %s: %w", s.dir, err)
	}
	var out []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if _, ok := domain.KindForExt(ext); !ok {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSuffix(name, ext))
		if err != nil || index < 0 {
			continue
		}
		out = append(out, index)
	}
	return out, nil
}

// Close implements SlotStore.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) removeOthers(index int, keep domain.Kind) error {
	for _, kind := range domain.Kinds {
		if kind == keep {
			continue
		}
		path := filepath.Join(s.dir, SlotFileName(index, kind))
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file store: remove %s: %w", path, err)
		}
	}
	return nil
}
