package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"kbrag/internal/port"
)

var bucketEntries = []byte("entries")

// Bolt is a bbolt-persisted similarity index. Entries are written under
// monotonically increasing sequence keys so a reload preserves insertion
// order, and the full entry set is mirrored in memory for search.
// Search, Count and Dimension behave identically after a reopen.
type Bolt struct {
	db      *bbolt.DB
	mu      sync.RWMutex
	dim     int
	entries []entry
}

// storedEntry is the on-disk form of an entry.
type storedEntry struct {
	ID       string            `json:"id"`
	Vector   []float32         `json:"v"`
	Text     string            `json:"t"`
	Metadata map[string]string `json:"m,omitempty"`
}

// NewBolt creates a bbolt-backed index on an open database, loading any
// previously persisted entries. A dimension of 0 means the dimension is
// latched by the first inserted batch (or by the loaded entries).
func NewBolt(db *bbolt.DB, dimension int) (*Bolt, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEntries)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create entries bucket: %w", err)
	}

	b := &Bolt{db: db, dim: dimension}
	if err := b.load(); err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	return b, nil
}

// load reads all persisted entries in sequence-key order.
func (b *Bolt) load() error {
	return b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketEntries)
		if bkt == nil {
			return nil
		}
		return bkt.ForEach(func(_, v []byte) error {
			var stored storedEntry
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("corrupt entry: %w", err)
			}
			b.entries = append(b.entries, entry{
				id:       stored.ID,
				vector:   stored.Vector,
				text:     stored.Text,
				metadata: stored.Metadata,
			})
			if b.dim == 0 {
				b.dim = len(stored.Vector)
			}
			return nil
		})
	})
}

// InsertBatch validates and persists the batch in one transaction, then
// publishes it to the in-memory mirror. Readers never observe a partial
// batch.
func (b *Bolt) InsertBatch(batch []port.Entry) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	dim, err := validateBatch(b.dim, batch)
	if err != nil {
		return 0, err
	}

	staged := make([]entry, 0, len(batch))
	for _, e := range batch {
		staged = append(staged, newEntry(uuid.NewString(), e))
	}

	err = b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketEntries)
		if bkt == nil {
			return fmt.Errorf("entries bucket not found")
		}
		for _, e := range staged {
			seq, err := bkt.NextSequence()
			if err != nil {
				return err
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)

			data, err := json.Marshal(storedEntry{
				ID:       e.id,
				Vector:   e.vector,
				Text:     e.text,
				Metadata: e.metadata,
			})
			if err != nil {
				return err
			}
			if err := bkt.Put(key, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to persist batch: %w", err)
	}

	b.dim = dim
	b.entries = append(b.entries, staged...)
	return len(staged), nil
}

// Search returns up to topK entries passing the filter, nearest first.
func (b *Bolt) Search(query []float32, topK int, filter port.MetadataFilter) ([]port.QueryResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return searchEntries(b.entries, b.dim, query, topK, filter)
}

// Clear removes all entries, on disk and in memory, and returns how many
// were removed.
func (b *Bolt) Clear() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketEntries); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketEntries)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear entries: %w", err)
	}

	removed := len(b.entries)
	b.entries = nil
	return removed, nil
}

// Count returns the number of stored entries.
func (b *Bolt) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Dimension returns the fixed vector dimension, or 0 if unset.
func (b *Bolt) Dimension() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dim
}

// Close closes the underlying database.
func (b *Bolt) Close() error {
	return b.db.Close()
}
