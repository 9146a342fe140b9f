package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yndnr/ledwall-go/internal/core/domain"
)

func TestFileStore_WriteRead(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	rec := domain.Record{Kind: domain.KindAnimation, Data: []byte("GIF89a...")}
	if err := s.Write(ctx, 4, rec); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "4.gif")); err != nil {
		t.Errorf("expected 4.gif on disk: %v", err)
	}

	got, found, err := s.Read(ctx, 4)
	if err != nil || !found {
		t.Fatalf("Read() = found %v, err %v", found, err)
	}
	if !got.Equal(rec) {
		t.Errorf("Read() = %+v, want %+v", got, rec)
	}

	if _, found, err := s.Read(ctx, 5); err != nil || found {
		t.Errorf("Read(5) = found %v, err %v; want not found", found, err)
	}
}

func TestFileStore_KindChangeRemovesOldFile(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	ctx := context.Background()

	_ = s.Write(ctx, 0, domain.Record{Kind: domain.KindImage, Data: []byte("png")})
	if err := s.Write(ctx, 0, domain.Record{Kind: domain.KindText, Data: []byte("hi")}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "0.png")); !os.IsNotExist(err) {
		t.Errorf("0.png should be gone, stat err = %v", err)
	}
	got, _, _ := s.Read(ctx, 0)
	if got.Kind != domain.KindText {
		t.Errorf("Read() kind = %v, want text", got.Kind)
	}

	if err := s.Write(ctx, 0, domain.EmptyRecord()); err != nil {
		t.Fatalf("Write(empty) error = %v", err)
	}
	if _, found, _ := s.Read(ctx, 0); found {
		t.Error("slot should be gone after writing an empty record")
	}
}

func TestFileStore_FailedRemovalRollsBackNewFile(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	ctx := context.Background()

	// A non-empty directory under the text name cannot be removed.
	stale := filepath.Join(dir, SlotFileName(2, domain.KindText))
	if err := os.MkdirAll(filepath.Join(stale, "keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	err := s.Write(ctx, 2, domain.Record{Kind: domain.KindImage, Data: []byte("png")})
	if err == nil {
		t.Fatal("Write() should fail when the old file cannot be removed")
	}
	if _, err := os.Stat(filepath.Join(dir, SlotFileName(2, domain.KindImage))); !os.IsNotExist(err) {
		t.Errorf("new file should be rolled back, stat err = %v", err)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Errorf("old entry should be left in place: %v", err)
	}
}

func TestFileStore_FailedRemovalKeepsOverwrittenFile(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	ctx := context.Background()

	if err := s.Write(ctx, 3, domain.Record{Kind: domain.KindImage, Data: []byte("old")}); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(dir, SlotFileName(3, domain.KindText))
	if err := os.MkdirAll(filepath.Join(stale, "keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := s.Write(ctx, 3, domain.Record{Kind: domain.KindImage, Data: []byte("new")}); err == nil {
		t.Fatal("Write() should fail when the old file cannot be removed")
	}
	// An existing file of the same kind is not deleted by the rollback.
	if _, err := os.Stat(filepath.Join(dir, SlotFileName(3, domain.KindImage))); err != nil {
		t.Errorf("existing image file removed: %v", err)
	}
}

func TestFileStore_Indices(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	ctx := context.Background()

	_ = s.Write(ctx, 2, domain.Record{Kind: domain.KindImage, Data: []byte("a")})
	_ = s.Write(ctx, 11, domain.Record{Kind: domain.KindText, Data: []byte("b")})
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "3.bmp"), []byte("ignored"), 0o644)

	got, err := s.Indices()
	if err != nil {
		t.Fatalf("Indices() error = %v", err)
	}
	sort.Ints(got)
	if diff := cmp.Diff([]int{2, 11}, got); diff != "" {
		t.Errorf("Indices() mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStore_RequiresDir(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Error("NewFileStore(\"\") should fail")
	}
}
