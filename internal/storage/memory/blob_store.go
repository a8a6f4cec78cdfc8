// Package memory contains in-memory blob storage for tests.
package memory

import (
	"context"
	"fmt"
	"sync"
)

// BlobStore keeps written objects in a map for inspection.
type BlobStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewBlobStore constructs a BlobStore.
func NewBlobStore() *BlobStore {
	return &BlobStore{objects: make(map[string][]byte)}
}

// PutObject records the object and returns a mem:// URI.
func (s *BlobStore) PutObject(_ context.Context, path string, _ string, data []byte) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = append([]byte(nil), data...)
	return fmt.Sprintf("mem://%s", path), nil
}

// Object returns a stored object.
func (s *BlobStore) Object(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[path]
	return data, ok
}

// Len returns the number of stored objects.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
