package store

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/theirongolddev/foogie/internal/model"
)

// MemStore is an in-memory key-value store. Safe for concurrent access.
type MemStore struct {
	mu      sync.RWMutex
	data    map[string][]byte
	archive map[string]model.DayRecord
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		data:    make(map[string][]byte),
		archive: make(map[string]model.DayRecord),
	}
}

// Get returns a copy of the value stored under key.
func (m *MemStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

// Put writes value under key.
func (m *MemStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = bytes.Clone(value)
	return nil
}

// CompareAndSwap has the same contract as Store.CompareAndSwap.
func (m *MemStore) CompareAndSwap(_ context.Context, key string, prev, next []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.data[key]
	if prev == nil {
		if ok {
			return false, nil
		}
	} else if !ok || !bytes.Equal(cur, prev) {
		return false, nil
	}
	m.data[key] = bytes.Clone(next)
	return true, nil
}

// Delete removes key.
func (m *MemStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// ArchiveDay stores rec keyed by its date.
func (m *MemStore) ArchiveDay(_ context.Context, rec model.DayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archive[rec.Date] = rec
	return nil
}

// History returns archived days, newest first.
func (m *MemStore) History(_ context.Context, limit int) ([]model.DayRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.DayRecord, 0, len(m.archive))
	for _, rec := range m.archive {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
