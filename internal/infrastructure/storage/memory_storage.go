package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Ensure MemoryObjectStorage implements ObjectStore
var _ ObjectStore = (*MemoryObjectStorage)(nil)

// MemoryObjectStorage keeps objects in process memory. It backs tests and
// local runs where no bucket is configured.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	bucket  string
	objects map[Location][]byte
}

// NewMemoryObjectStorage creates an empty store whose default bucket is bucket
func NewMemoryObjectStorage(bucket string) *MemoryObjectStorage {
	return &MemoryObjectStorage{
		bucket:  bucket,
		objects: make(map[Location][]byte),
	}
}

// Get returns a copy of the object at loc
func (m *MemoryObjectStorage) Get(_ context.Context, loc Location, maxBytes int64) ([]byte, error) {
	loc = m.resolve(loc)
	m.mu.RLock()
	data, ok := m.objects[loc]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, loc)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %s is over %d bytes", ErrObjectTooLarge, loc, maxBytes)
	}
	return append([]byte(nil), data...), nil
}

// Put stores a copy of data at loc
func (m *MemoryObjectStorage) Put(_ context.Context, loc Location, data []byte, _ string) error {
	loc = m.resolve(loc)
	if loc.Key == "" {
		return errors.New("storage key is required")
	}
	m.mu.Lock()
	m.objects[loc] = append([]byte(nil), data...)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored objects
func (m *MemoryObjectStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

func (m *MemoryObjectStorage) resolve(loc Location) Location {
	if loc.Bucket == "" {
		loc.Bucket = m.bucket
	}
	return loc
}
