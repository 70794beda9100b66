package cache

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is an in-memory Store. Entries do not outlive the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
	calls   Calls
}

// Calls tracks method invocations for test verification.
type Calls struct {
	Get   int
	Hit   int
	Put   int
	Sweep int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (m *MemoryStore) Get(ctx context.Context, fp string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fault(ErrReadFailed, fp, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Get++

	html, ok := m.entries[fp]
	if !ok {
		return nil, false, nil
	}
	m.calls.Hit++
	return slices.Clone(html), true, nil
}

func (m *MemoryStore) Put(ctx context.Context, fp string, html []byte) error {
	if err := ctx.Err(); err != nil {
		return fault(ErrWriteFailed, fp, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Put++

	m.entries[fp] = slices.Clone(html)
	return nil
}

func (m *MemoryStore) Sweep(ctx context.Context, live map[string]struct{}) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fault(ErrSweepFailed, "", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Sweep++

	removed := 0
	for fp := range m.entries {
		if _, ok := live[fp]; !ok {
			delete(m.entries, fp)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore) Close() error { return nil }

// GetCalls returns a copy of the call counters.
func (m *MemoryStore) GetCalls() Calls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// Keys returns the stored fingerprints in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
