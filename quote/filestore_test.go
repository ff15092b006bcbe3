package quote

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "quotes"))

	at := time.Date(2023, time.November, 1, 12, 0, 0, 0, time.UTC)
	in := Entry{At: at, Data: json.RawMessage(`{"price":42}`)}
	require.NoError(t, s.Put("quote_US123", in))

	out, ok := s.Get("quote_US123")
	require.True(t, ok)
	assert.True(t, out.At.Equal(at))
	assert.JSONEq(t, `{"price":42}`, string(out.Data))
}

func TestFileStoreMissingIsAbsent(t *testing.T) {
	s := NewFileStore(t.TempDir())
	_, ok := s.Get("quote_US123")
	assert.False(t, ok)
}

func TestFileStoreCorruptIsAbsent(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	require.NoError(t, s.Put("quote_US123", Entry{
		At:   time.Now(),
		Data: json.RawMessage(`{}`),
	}))

	// Scribble over the file: the entry silently becomes a miss.
	require.NoError(t, os.WriteFile(s.path("quote_US123"), []byte("scribble"), 0o644))
	_, ok := s.Get("quote_US123")
	assert.False(t, ok)
}

func TestFileStoreZeroEntryIsAbsent(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	require.NoError(t, os.WriteFile(s.path("k"), []byte(`{}`), 0o644))
	_, ok := s.Get("k")
	assert.False(t, ok, "an envelope without timestamp or data is not a hit")
}

func TestFileStoreEscapesKeys(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	// A path-hostile key must stay inside the folder.
	key := "quote_../evil"
	require.NoError(t, s.Put(key, Entry{At: time.Now(), Data: json.RawMessage(`1`)}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got, ok := s.Get(key)
	require.True(t, ok)
	assert.Equal(t, "1", string(got.Data))
}
