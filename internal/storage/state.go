package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/yndnr/ledwall-go/internal/core/domain"
)

// StateFile persists the display state descriptor as a single JSON
// document, replaced atomically on every save.
type StateFile struct {
	path string
}

// NewStateFile creates a StateFile at path. The parent directory is created
// on first save.
func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

// Path returns the file location.
func (f *StateFile) Path() string {
	return f.path
}

// Save overwrites the file with d.
func (f *StateFile) Save(d domain.Descriptor) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("state file: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("state file: create dir: %w", err)
	}
	if err := atomic.WriteFile(f.path, bytes.NewReader(append(data, '\n'))); err != nil {
		return fmt.Errorf("state file: write %s: %w", f.path, err)
	}
	return nil
}

// Load reads the stored descriptor. found is false when no file exists.
// A file that does not hold a valid descriptor is reported as
// domain.ErrInvalidStateDescriptor.
func (f *StateFile) Load() (d domain.Descriptor, found bool, err error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Descriptor{}, false, nil
	}
	if err != nil {
		return domain.Descriptor{}, false, fmt.Errorf("state file: read %s: %w", f.path, err)
	}
	d, err = domain.ParseDescriptor(data)
	if err != nil {
		return domain.Descriptor{}, true, err
	}
	return d, true, nil
}
