package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
)

// RedisBlobStore keeps blobs as plain Redis string values without expiry.
type RedisBlobStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisBlobStore constructs a Redis-backed store.
func NewRedisBlobStore(client *redis.Client, logger *zap.Logger) *RedisBlobStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBlobStore{client: client, logger: logger}
}

// Get fetches the value under key.
func (s *RedisBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.client == nil {
		return nil, appErrors.ErrBlobNotFound
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrBlobNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Put stores payload under key.
func (s *RedisBlobStore) Put(ctx context.Context, key string, payload []byte) error {
	if s.client == nil {
		return fmt.Errorf("redis set %s: client not configured", key)
	}

	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		s.logger.Warn("redis blob write failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
