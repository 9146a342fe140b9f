package repl

import (
	"io"
	"os"
	"path/filepath"
)

// historyStore is the part of *liner.State that persists history.
type historyStore interface {
	ReadHistory(r io.Reader) (int, error)
	WriteHistory(w io.Writer) (int, error)
}

// History persists shell history to a file.
type History struct {
	file string
}

// NewHistory creates a History backed by file. An empty file disables it.
func NewHistory(file string) *History {
	return &History{file: file}
}

// Load reads the history file into s. A missing file is not an error.
func (h *History) Load(s historyStore) error {
	if h.file == "" {
		return nil
	}
	f, err := os.Open(h.file)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = s.ReadHistory(f)
	return err
}

// Save writes the history of s to the file with 0600 permissions.
func (h *History) Save(s historyStore) error {
	if h.file == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.file), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(h.file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := s.WriteHistory(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
