package quote

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// FileStore is the durable store tier: one JSON envelope file per key in a
// folder, surviving process restarts. Reads tolerate missing, unreadable or
// corrupt files by reporting the entry absent; a failed write is reported to
// the caller but must never abort an otherwise-successful fetch (the cache
// logs and continues).
type FileStore struct {
	dir string
	mu  sync.Mutex
	log zerolog.Logger
}

// NewFileStore returns a durable store rooted at dir. The folder is created
// lazily on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, log: zerolog.Nop()}
}

// WithLogger sets the logger for ignored read errors.
func (s *FileStore) WithLogger(log zerolog.Logger) *FileStore {
	s.log = log
	return s
}

// path maps a key to its backing file. Keys are escaped so identifiers with
// path-hostile characters cannot wander out of the folder.
func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

func (s *FileStore) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		// Corrupt entry: treated uniformly as "no cached value".
		s.log.Debug().Str("key", key).Err(err).Msg("discarding corrupt cache entry")
		return Entry{}, false
	}
	if e.At.IsZero() || len(e.Data) == 0 {
		return Entry{}, false
	}
	return e, true
}

func (s *FileStore) Put(key string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("cannot create cache folder %q: %w", s.dir, err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("cannot encode cache entry %q: %w", key, err)
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("cannot write cache entry %q: %w", key, err)
	}
	return nil
}
