package history

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFileStoreMissingFileLoadsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope"), 10)

	entries, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", entries)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", ".gptcmd_history")
	store := NewFileStore(path, 10)
	ctx := context.Background()

	if err := store.Save(ctx, []string{"hello", "what is Go?"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(data) != "hello\nwhat is Go?\n" {
		t.Errorf("unexpected file contents %q", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(entries, []string{"hello", "what is Go?"}) {
		t.Errorf("unexpected entries %v", entries)
	}
}

func TestFileStoreSaveAppendsAndTrims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(path, []byte("a\n\nb\r\nc\n"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := NewFileStore(path, 4)
	ctx := context.Background()

	if err := store.Save(ctx, []string{"d", "", "e"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(entries, []string{"b", "c", "d", "e"}) {
		t.Errorf("unexpected entries %v", entries)
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("expected temp files to be cleaned up, found %v", matches)
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	store := NewFileStore(path, 10)
	ctx := context.Background()

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear on missing file failed: %v", err)
	}
	if err := store.Save(ctx, []string{"x"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed, stat err = %v", err)
	}
}

func TestFileStoreWithHistoryFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	ctx := context.Background()

	first := New(NewFileStore(path, 10), 10)
	first.Add("run one")
	if err := first.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	second := New(NewFileStore(path, 10), 10)
	loaded, err := second.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, []string{"run one"}) {
		t.Errorf("expected previous run's entries, got %v", loaded)
	}

	second.Add("run two")
	if err := second.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	final, _ := NewFileStore(path, 10).Load(ctx)
	if !reflect.DeepEqual(final, []string{"run one", "run two"}) {
		t.Errorf("expected entries from both runs without duplicates, got %v", final)
	}
}
