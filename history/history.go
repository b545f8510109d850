package history

import (
	"context"
	"strings"
	"sync"
)

// History is the ordered sequence of lines the operator has entered.
// Entries loaded from the Store are available for recall; lines added
// during this run are persisted by Flush.
//
// Thread-safe: Add may race with Flush when an interrupt arrives.
type History struct {
	mu      sync.Mutex
	store   Store
	limit   int
	entries []string
	added   []string
	index   *Index

	flushOnce sync.Once
	flushErr  error
}

// New creates a History backed by store. limit caps the recall list;
// 0 means DefaultLimit.
func New(store Store, limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{store: store, limit: limit, index: NewIndex()}
}

// Load reads previously stored entries and returns them oldest first.
func (h *History) Load(ctx context.Context) ([]string, error) {
	loaded, err := h.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	loaded = keepLast(loaded, h.limit)
	for _, e := range loaded {
		h.index.Insert(e)
	}
	h.entries = keepLast(append(loaded, h.entries...), h.limit)
	return h.snapshot(), nil
}

// Add appends a line. Blank lines are ignored.
func (h *History) Add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = keepLast(append(h.entries, line), h.limit)
	h.added = append(h.added, line)
	h.index.Insert(line)
}

// Complete returns up to limit distinct entries that start with prefix.
func (h *History) Complete(prefix string, limit int) []string {
	return h.index.WithPrefix(prefix, limit)
}

// Entries returns a copy of the recall list, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot()
}

// Added returns a copy of the lines recorded during this run.
func (h *History) Added() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.added...)
}

func (h *History) snapshot() []string {
	return append([]string{}, h.entries...)
}

// Flush saves this run's entries to the Store. Only the first call writes;
// later calls return the first call's result.
func (h *History) Flush(ctx context.Context) error {
	h.flushOnce.Do(func() {
		h.flushErr = h.store.Save(ctx, h.Added())
	})
	return h.flushErr
}
