package tracestore

import (
	"slices"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory trace store.
// Data is lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record // evalID -> record
	seq     map[string]int    // rule -> last sequence
	closed  bool
}

// NewMemoryStore creates a new in-memory trace store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		seq:     make(map[string]int),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(rec Record) error {
	if rec.EvalID == "" {
		return ErrMissingEvalID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	m.seq[rec.Rule]++
	rec.Sequence = m.seq[rec.Rule]
	stamp(&rec)
	rec.Fired = slices.Clone(rec.Fired)
	m.records[rec.EvalID] = rec
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(evalID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}

	rec, ok := m.records[evalID]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec.Fired = slices.Clone(rec.Fired)
	return rec, nil
}

// List implements Store.
func (m *MemoryStore) List(rule string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	out := []Record{}
	for _, rec := range m.records {
		if rec.Rule == rule {
			rec.Fired = slices.Clone(rec.Fired)
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}

// DeleteRule implements Store.
func (m *MemoryStore) DeleteRule(rule string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	for id, rec := range m.records {
		if rec.Rule == rule {
			delete(m.records, id)
		}
	}
	return nil
}

// Prune implements Store.
func (m *MemoryStore) Prune(cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrStoreClosed
	}

	n := 0
	for id, rec := range m.records {
		if rec.Timestamp.Before(cutoff) {
			delete(m.records, id)
			n++
		}
	}
	return n, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.records = nil
	return nil
}

// Len returns the total number of records across all rules.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records)
}
