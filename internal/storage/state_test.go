package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yndnr/ledwall-go/internal/core/domain"
)

func TestStateFile_SaveLoad(t *testing.T) {
	f := NewStateFile(filepath.Join(t.TempDir(), "nested", "state.json"))

	if _, found, err := f.Load(); err != nil || found {
		t.Fatalf("Load() on missing file = found %v, err %v", found, err)
	}

	want := domain.ShowSlot(3).Descriptor()
	if err := f.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, found, err := f.Load()
	if err != nil || !found {
		t.Fatalf("Load() = found %v, err %v", found, err)
	}
	if !got.Equal(want) {
		t.Errorf("Load() = %s, want %s", got, want)
	}

	data, _ := os.ReadFile(f.Path())
	if string(data) != "{\"mode\":\"slot\",\"slot\":3}\n" {
		t.Errorf("file content = %q", data)
	}
}

func TestStateFile_LoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(`{"mode":"party"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, found, err := NewStateFile(path).Load()
	if !found {
		t.Error("Load() should report the file as found")
	}
	if !errors.Is(err, domain.ErrInvalidStateDescriptor) {
		t.Errorf("Load() error = %v, want ErrInvalidStateDescriptor", err)
	}
}
