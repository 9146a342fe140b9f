// Package remote stores slots on another ledwall server through its
// HTTP API. It lets a panel controller mirror a central content server.
package remote

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/yndnr/ledwall-go/internal/core/domain"
	"github.com/yndnr/ledwall-go/pkg/client"
)

// ErrClosed is returned after Close.
var ErrClosed = fmt.Errorf("remote store: closed")

// Config configures a Store.
type Config struct {
	// Addr is the upstream server address in any form client.New accepts.
	Addr string

	// Timeout bounds each upstream request.
	Timeout time.Duration

	// TLS overrides the trust settings for an https upstream.
	TLS *tls.Config
}

// Store is a slot store backed by a remote ledwall server.
type Store struct {
	client *client.Client
	closed atomic.Bool
}

// New creates a Store for the server at cfg.Addr. It does not contact the
// server; use Ping to check reachability.
func New(cfg Config) (*Store, error) {
	opts := []client.Option{client.WithUserAgent("ledwall-remote-store/1")}
	if cfg.Timeout > 0 {
		opts = append(opts, client.WithTimeout(cfg.Timeout))
	}
	if cfg.TLS != nil {
		opts = append(opts, client.WithTLSConfig(cfg.TLS))
	}
	c, err := client.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("remote store: %w", err)
	}
	return &Store{client: c}, nil
}

// Ping checks that the upstream server answers.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.Ping(ctx)
	return err
}

// Write uploads rec, or clears the upstream slot when rec is empty.
func (s *Store) Write(ctx context.Context, index int, rec domain.Record) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if index < 0 {
		return fmt.Errorf("remote store: negative slot index %d", index)
	}
	if rec.IsEmpty() {
		if err := s.client.ClearSlot(ctx, index); err != nil {
			return fmt.Errorf("remote store: clear slot %d: %w", index, err)
		}
		return nil
	}
	if _, err := s.client.SetSlot(ctx, index, rec.Kind.String(), rec.Data); err != nil {
		return fmt.Errorf("remote store: write slot %d: %w", index, err)
	}
	return nil
}

// Read downloads the upstream slot. An index beyond the upstream slot
// count reads as not found.
func (s *Store) Read(ctx context.Context, index int) (domain.Record, bool, error) {
	if s.closed.Load() {
		return domain.Record{}, false, ErrClosed
	}
	slot, err := s.client.GetSlot(ctx, index)
	if err != nil {
		if client.StatusCode(err) == http.StatusBadRequest && client.ErrorCode(err) == domain.ErrInvalidIndex.Code {
			return domain.EmptyRecord(), false, nil
		}
		return domain.Record{}, false, fmt.Errorf("remote store: read slot %d: %w", index, err)
	}
	if slot.Empty() {
		return domain.EmptyRecord(), true, nil
	}
	kind, err := domain.ParseKind(slot.Kind)
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("remote store: slot %d: %w", index, err)
	}
	rec, err := domain.NewRecord(kind, slot.Data)
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("remote store: slot %d: %w", index, err)
	}
	return rec, true, nil
}

// Close marks the store closed. Later calls fail with ErrClosed.
func (s *Store) Close() error {
	s.closed.Store(true)
	return nil
}
