package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-roster-ledger/internal/models"
	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
)

// BlobStore is the key-value collaborator holding the serialised roster.
// Get returns appErrors.ErrBlobNotFound when nothing is stored under key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, payload []byte) error
}

// SnapshotRepository loads and flushes the whole roster as one blob.
type SnapshotRepository struct {
	store      BlobStore
	key        string
	legacyNote string
	logger     *zap.Logger
}

// NewSnapshotRepository constructs the repository.
func NewSnapshotRepository(store BlobStore, key, legacyNote string, logger *zap.Logger) *SnapshotRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotRepository{store: store, key: key, legacyNote: legacyNote, logger: logger}
}

// Key returns the blob key the roster is stored under.
func (r *SnapshotRepository) Key() string {
	return r.key
}

// Load reads and migrates the stored roster. A missing blob is an empty roster.
// The returned flag is set when the stored shape was upgraded and should be
// written back.
func (r *SnapshotRepository) Load(ctx context.Context) ([]*models.Class, bool, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, appErrors.ErrBlobNotFound) {
			r.logger.Info("no stored roster, starting empty", zap.String("key", r.key))
			return []*models.Class{}, false, nil
		}
		return nil, false, appErrors.WrapAs(err, appErrors.ErrPersistence, "failed to read stored roster")
	}

	classes, report, err := DecodeSnapshot(raw, r.legacyNote)
	if err != nil {
		return nil, false, appErrors.WrapAs(err, appErrors.ErrCorruptSnapshot, "")
	}

	if report.Changed() || report.BalanceEvents > 0 {
		r.logger.Info("stored roster migrated",
			zap.String("key", r.key),
			zap.Int("upgraded", report.Upgraded),
			zap.Int("skipped_unnamed", report.SkippedUnnamed),
			zap.Int("dropped_entries", report.DroppedEntries),
			zap.Int("balance_events", report.BalanceEvents),
			zap.Strings("duplicate_classes", report.DuplicateClasses),
		)
	}
	if len(report.DuplicateNames) > 0 {
		r.logger.Warn("stored roster holds duplicate student names", zap.Strings("students", report.DuplicateNames))
	}
	return classes, report.Changed(), nil
}

// Save writes the full roster and returns the payload size.
func (r *SnapshotRepository) Save(ctx context.Context, classes []*models.Class) (int, error) {
	payload, err := EncodeSnapshot(classes)
	if err != nil {
		return 0, appErrors.WrapAs(err, appErrors.ErrPersistence, "failed to encode roster")
	}
	if err := r.store.Put(ctx, r.key, payload); err != nil {
		return 0, appErrors.WrapAs(err, appErrors.ErrPersistence, "")
	}
	return len(payload), nil
}

// Raw returns the stored bytes untouched.
func (r *SnapshotRepository) Raw(ctx context.Context) ([]byte, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, appErrors.ErrBlobNotFound) {
			return nil, err
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrPersistence, "failed to read stored roster")
	}
	return raw, nil
}
