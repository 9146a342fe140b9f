package storage

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/ledwall-go/internal/core/domain"
)

func newTestBadger(t *testing.T, dir string) *BadgerStore {
	t.Helper()
	cfg := DefaultBadgerConfig(dir)
	cfg.GCInterval = "1h" // keep auto GC out of the way
	cfg.SyncWrites = false

	s, err := NewBadgerStore(cfg, slog.Default())
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	return s
}

func TestBadgerStore_BasicOperations(t *testing.T) {
	s := newTestBadger(t, t.TempDir())
	defer s.Close()
	ctx := context.Background()

	t.Run("Read missing", func(t *testing.T) {
		if _, found, err := s.Read(ctx, 0); err != nil || found {
			t.Errorf("Read() = found %v, err %v; want not found", found, err)
		}
	})

	t.Run("Write and Read", func(t *testing.T) {
		rec := domain.Record{Kind: domain.KindImage, Data: []byte{0x89, 'P', 'N', 'G'}}
		if err := s.Write(ctx, 7, rec); err != nil {
			t.Fatal(err)
		}
		got, found, err := s.Read(ctx, 7)
		if err != nil || !found {
			t.Fatalf("Read() = found %v, err %v", found, err)
		}
		if !got.Equal(rec) {
			t.Errorf("Read() = %+v, want %+v", got, rec)
		}
	})

	t.Run("Write empty deletes", func(t *testing.T) {
		if err := s.Write(ctx, 7, domain.EmptyRecord()); err != nil {
			t.Fatal(err)
		}
		if _, found, _ := s.Read(ctx, 7); found {
			t.Error("slot 7 should be gone")
		}
	})

	t.Run("Negative index", func(t *testing.T) {
		if err := s.Write(ctx, -1, domain.EmptyRecord()); err == nil {
			t.Error("Write(-1) should fail")
		}
	})
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	rec := domain.Record{Kind: domain.KindText, Data: []byte("scroll me")}

	s := newTestBadger(t, dir)
	if err := s.Write(ctx, 2, rec); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := newTestBadger(t, dir)
	defer reopened.Close()

	got, found, err := reopened.Read(ctx, 2)
	if err != nil || !found {
		t.Fatalf("Read() after reopen = found %v, err %v", found, err)
	}
	if !got.Equal(rec) {
		t.Errorf("Read() = %+v, want %+v", got, rec)
	}

	indices, err := reopened.Indices()
	if err != nil {
		t.Fatal(err)
	}
	if len(indices) != 1 || indices[0] != 2 {
		t.Errorf("Indices() = %v, want [2]", indices)
	}
}

func TestBadgerStore_InMemoryAndClosed(t *testing.T) {
	s := newTestBadger(t, "")
	ctx := context.Background()

	if err := s.Write(ctx, 1, domain.Record{Kind: domain.KindImage, Data: []byte("x")}); err != nil {
		t.Fatal(err)
	}
	if err := s.GC(); err != nil {
		t.Errorf("GC() in memory error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := s.Write(ctx, 1, domain.EmptyRecord()); err != ErrClosed {
		t.Errorf("Write() after Close = %v, want ErrClosed", err)
	}
}

func TestBadgerStore_RegisterMetrics(t *testing.T) {
	s := newTestBadger(t, t.TempDir())
	defer s.Close()

	reg := prometheus.NewRegistry()
	s.RegisterMetrics(reg)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"ledwall_badger_lsm_size_bytes", "ledwall_badger_gc_runs_total"} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}
