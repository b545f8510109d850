package history

import (
	"strings"
	"sync"

	"github.com/armon/go-radix"
)

// Index is a prefix tree over distinct history entries. Each key maps to
// the number of times the entry was recorded.
type Index struct {
	mu   sync.RWMutex
	tree *radix.Tree
}

// NewIndex creates an index seeded with entries. Blank entries are skipped.
func NewIndex(entries ...string) *Index {
	idx := &Index{tree: radix.New()}
	for _, e := range entries {
		idx.Insert(e)
	}
	return idx
}

// Insert records one occurrence of entry.
func (i *Index) Insert(entry string) {
	if strings.TrimSpace(entry) == "" {
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	count := 0
	if v, ok := i.tree.Get(entry); ok {
		count = v.(int)
	}
	i.tree.Insert(entry, count+1)
}

// Len returns the number of distinct entries.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.tree.Len()
}

// Count returns how many times entry was recorded.
func (i *Index) Count(entry string) int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if v, ok := i.tree.Get(entry); ok {
		return v.(int)
	}
	return 0
}

// WithPrefix returns the distinct entries starting with prefix, in
// lexical order. A limit of zero or less returns every match.
func (i *Index) WithPrefix(prefix string, limit int) []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var matches []string
	i.tree.WalkPrefix(prefix, func(k string, _ interface{}) bool {
		matches = append(matches, k)
		return limit > 0 && len(matches) >= limit
	})
	return matches
}
