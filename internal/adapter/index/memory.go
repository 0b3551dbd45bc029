package index

import (
	"sync"

	"github.com/google/uuid"

	"kbrag/internal/port"
)

// Memory is an in-memory similarity index. A single RWMutex guards the
// entry slice: searches run concurrently, writes are exclusive, and a
// batch insert is never partially visible to a reader.
type Memory struct {
	mu      sync.RWMutex
	dim     int
	entries []entry
}

// NewMemory creates an in-memory index. A dimension of 0 means the
// dimension is latched by the first inserted batch.
func NewMemory(dimension int) *Memory {
	return &Memory{dim: dimension}
}

// InsertBatch adds entries as a single atomic unit, assigning each a
// fresh UUID. Returns the number inserted.
func (m *Memory) InsertBatch(batch []port.Entry) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dim, err := validateBatch(m.dim, batch)
	if err != nil {
		return 0, err
	}
	m.dim = dim

	for _, e := range batch {
		m.entries = append(m.entries, newEntry(uuid.NewString(), e))
	}
	return len(batch), nil
}

// Search returns up to topK entries passing the filter, nearest first.
func (m *Memory) Search(query []float32, topK int, filter port.MetadataFilter) ([]port.QueryResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return searchEntries(m.entries, m.dim, query, topK, filter)
}

// Clear removes all entries and returns how many were removed.
// The configured dimension survives a clear.
func (m *Memory) Clear() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := len(m.entries)
	m.entries = nil
	return removed, nil
}

// Count returns the number of stored entries.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Dimension returns the fixed vector dimension, or 0 if unset.
func (m *Memory) Dimension() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dim
}
