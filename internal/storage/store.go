package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/yndnr/ledwall-go/internal/core/domain"
)

// Backend names accepted by configuration.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRemote = "remote"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("store closed")
)

// SlotStore persists slot records by index.
//
// Implementations must be safe for concurrent use.
type SlotStore interface {
	// Write replaces the record at index. An empty record clears it.
	Write(ctx context.Context, index int, rec domain.Record) error

	// Read returns the record at index. found is false when the backend
	// holds nothing for index.
	Read(ctx context.Context, index int) (rec domain.Record, found bool, err error)

	// Close releases backend resources.
	Close() error
}

// checkIndex rejects negative indices before they reach a key or file name.
func checkIndex(index int) error {
	if index < 0 {
		return fmt.Errorf("storage: negative slot index %d", index)
	}
	return nil
}
