package thumbs

import (
	"strings"
	"sync"

	"picpurge/internal/metrics"
)

// RefPrefix marks a thumbnail reference that resolves against the
// in-memory store rather than the filesystem.
const RefPrefix = "memory://"

// Store holds generated thumbnails in memory, keyed by the content
// hash of the source image. Thumbnails for byte-identical files share
// one entry.
type Store struct {
	mu    sync.RWMutex
	data  map[string][]byte
	bytes int64
}

func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Put stores a thumbnail under the given content hash and returns the
// memory reference for it. Storing under an existing hash replaces the
// previous bytes.
func (s *Store) Put(contentHash string, thumb []byte) string {
	s.mu.Lock()
	if prev, ok := s.data[contentHash]; ok {
		s.bytes -= int64(len(prev))
	}
	s.data[contentHash] = thumb
	s.bytes += int64(len(thumb))
	count, bytes := len(s.data), s.bytes
	s.mu.Unlock()

	metrics.ThumbnailCount.Set(float64(count))
	metrics.ThumbnailMemoryBytes.Set(float64(bytes))
	return RefPrefix + contentHash
}

// Get returns the thumbnail for a content hash.
func (s *Store) Get(contentHash string) ([]byte, bool) {
	s.mu.RLock()
	thumb, ok := s.data[contentHash]
	s.mu.RUnlock()
	return thumb, ok
}

// Resolve looks a thumbnail up by its stored reference, accepting
// either a bare content hash or a memory:// reference.
func (s *Store) Resolve(ref string) ([]byte, bool) {
	return s.Get(strings.TrimPrefix(ref, RefPrefix))
}

// Delete removes the thumbnail for a content hash, if present.
func (s *Store) Delete(contentHash string) {
	s.mu.Lock()
	if prev, ok := s.data[contentHash]; ok {
		s.bytes -= int64(len(prev))
		delete(s.data, contentHash)
	}
	count, bytes := len(s.data), s.bytes
	s.mu.Unlock()

	metrics.ThumbnailCount.Set(float64(count))
	metrics.ThumbnailMemoryBytes.Set(float64(bytes))
}

// Len returns the number of stored thumbnails.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Bytes returns the total size of all stored thumbnails.
func (s *Store) Bytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bytes
}
