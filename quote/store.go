package quote

import (
	"encoding/json"
	"sync"
	"time"
)

// Entry is a timestamped payload envelope as held by a store. Data is the
// JSON encoding of the cached value; At is its capture time. A backfilled
// entry keeps its original capture time.
type Entry struct {
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data"`
}

// Store is one key-value tier of the cache. Implementations must treat
// unreadable or corrupt entries as absent, and may be read and written by
// concurrently in-flight fetches.
type Store interface {
	// Get returns the entry for key, or false if absent or unreadable.
	Get(key string) (Entry, bool)
	// Put stores the entry for key, overwriting any previous one.
	Put(key string, e Entry) error
}

// MemStore is the transient, process-lifetime store.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]Entry)}
}

func (s *MemStore) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

func (s *MemStore) Put(key string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
	return nil
}

// Len returns the number of cached entries.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
