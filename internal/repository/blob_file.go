package repository

import (
	"context"
	"errors"
	"fmt"

	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
	"github.com/noah-isme/sma-roster-ledger/pkg/storage"
)

// FileBlobStore stores each blob as <key>.json under a local directory.
type FileBlobStore struct {
	storage *storage.LocalStorage
}

// NewFileBlobStore constructs a file-backed store.
func NewFileBlobStore(files *storage.LocalStorage) *FileBlobStore {
	return &FileBlobStore{storage: files}
}

// Get reads the blob file for key.
func (s *FileBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.storage.Read(blobFilename(key))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, appErrors.ErrBlobNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put atomically replaces the blob file for key.
func (s *FileBlobStore) Put(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.storage.Save(blobFilename(key), payload); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

func blobFilename(key string) string {
	return key + ".json"
}
