package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one entry per line in a plain text file.
type FileStore struct {
	path  string
	limit int
}

// NewFileStore creates a FileStore. The file is not touched until Save.
func NewFileStore(path string, limit int) *FileStore {
	return &FileStore{path: path, limit: limit}
}

// Path returns the history file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the file. A missing file loads as empty.
func (f *FileStore) Load(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	entries := []string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			entries = append(entries, line)
		}
	}
	return entries, nil
}

// Save appends entries to what is on disk, trims to the limit and replaces
// the file atomically.
func (f *FileStore) Save(ctx context.Context, entries []string) error {
	existing, err := f.Load(ctx)
	if err != nil {
		return err
	}

	all := existing
	for _, e := range entries {
		e = strings.ReplaceAll(strings.TrimSpace(e), "\n", " ")
		if e != "" {
			all = append(all, e)
		}
	}
	all = keepLast(all, f.limit)

	var buf strings.Builder
	for _, e := range all {
		buf.WriteString(e)
		buf.WriteByte('\n')
	}
	return f.writeAtomic([]byte(buf.String()))
}

func (f *FileStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	// Rename below makes this a no-op on success.
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set history permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// Clear removes the history file.
func (f *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove history file: %w", err)
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (f *FileStore) Close() error {
	return nil
}

var _ Store = (*FileStore)(nil)
