package snapshot

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Snapshot
	// MaxItems evicts the oldest snapshots beyond this count when positive.
	MaxItems int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(maxItems int) *MemoryStore {
	return &MemoryStore{items: make(map[string]Snapshot), MaxItems: maxItems}
}

func (m *MemoryStore) Save(ctx context.Context, s Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[s.ID] = s
	if m.MaxItems > 0 && len(m.items) > m.MaxItems {
		all := m.sortedLocked()
		for _, old := range all[m.MaxItems:] {
			delete(m.items, old.ID)
		}
	}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.items[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) List(ctx context.Context, q Query) ([]Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Snapshot
	for _, s := range m.sortedLocked() {
		if q.Match(s) {
			out = append(out, s.Summary())
		}
	}
	return q.Page(out), nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// sortedLocked returns all snapshots newest first.
func (m *MemoryStore) sortedLocked() []Snapshot {
	out := make([]Snapshot, 0, len(m.items))
	for _, s := range m.items {
		out = append(out, s)
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders by creation time descending, ties by id.
func SortNewestFirst(s []Snapshot) {
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].CreatedAt.Equal(s[j].CreatedAt) {
			return s[i].CreatedAt.After(s[j].CreatedAt)
		}
		return s[i].ID < s[j].ID
	})
}
