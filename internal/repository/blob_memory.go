package repository

import (
	"context"
	"sync"

	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
)

// MemoryBlobStore keeps blobs in process memory. Contents are lost on exit.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobStore constructs an empty store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

// Get returns a copy of the blob stored under key.
func (s *MemoryBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[key]
	if !ok {
		return nil, appErrors.ErrBlobNotFound
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

// Put replaces the blob stored under key.
func (s *MemoryBlobStore) Put(_ context.Context, key string, payload []byte) error {
	blob := make([]byte, len(payload))
	copy(blob, payload)
	s.mu.Lock()
	s.blobs[key] = blob
	s.mu.Unlock()
	return nil
}
