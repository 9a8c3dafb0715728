package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-roster-ledger/internal/models"
	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
	"github.com/noah-isme/sma-roster-ledger/pkg/storage"
)

func newBlobRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestMemoryBlobStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()

	_, err := store.Get(ctx, "school_db_v6")
	assert.True(t, errors.Is(err, appErrors.ErrBlobNotFound))

	payload := []byte(`{"5A":[]}`)
	require.NoError(t, store.Put(ctx, "school_db_v6", payload))
	payload[0] = 'x'

	got, err := store.Get(ctx, "school_db_v6")
	require.NoError(t, err)
	assert.Equal(t, `{"5A":[]}`, string(got))
}

func TestFileBlobStore(t *testing.T) {
	ctx := context.Background()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store := NewFileBlobStore(files)

	_, err = store.Get(ctx, "school_db_v6")
	assert.True(t, errors.Is(err, appErrors.ErrBlobNotFound))

	require.NoError(t, store.Put(ctx, "school_db_v6", []byte(`{}`)))
	got, err := store.Get(ctx, "school_db_v6")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))

	names, err := files.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"school_db_v6.json"}, names)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, store.Put(cancelled, "school_db_v6", []byte(`{}`)))
}

func TestRedisBlobStoreWithoutClient(t *testing.T) {
	store := NewRedisBlobStore(nil, nil)

	_, err := store.Get(context.Background(), "school_db_v6")
	assert.True(t, errors.Is(err, appErrors.ErrBlobNotFound))
	assert.Error(t, store.Put(context.Background(), "school_db_v6", []byte(`{}`)))
}

func TestPostgresBlobStoreGet(t *testing.T) {
	db, mock, cleanup := newBlobRepoMock(t)
	defer cleanup()
	store := NewPostgresBlobStore(db)

	mock.ExpectQuery("SELECT payload FROM roster_snapshots").
		WithArgs("school_db_v6").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`{"5A":[]}`)))

	got, err := store.Get(context.Background(), "school_db_v6")
	require.NoError(t, err)
	assert.Equal(t, `{"5A":[]}`, string(got))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBlobStoreGetMissing(t *testing.T) {
	db, mock, cleanup := newBlobRepoMock(t)
	defer cleanup()
	store := NewPostgresBlobStore(db)

	mock.ExpectQuery("SELECT payload FROM roster_snapshots").
		WithArgs("school_db_v6").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err := store.Get(context.Background(), "school_db_v6")
	assert.True(t, errors.Is(err, appErrors.ErrBlobNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBlobStorePutAndSchema(t *testing.T) {
	db, mock, cleanup := newBlobRepoMock(t)
	defer cleanup()
	store := NewPostgresBlobStore(db)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS roster_snapshots").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO roster_snapshots").
		WithArgs("school_db_v6", []byte(`{}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO roster_snapshots").
		WithArgs("school_db_v6", []byte(`{"x":[]}`), sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, store.Put(context.Background(), "school_db_v6", []byte(`{}`)))
	err := store.Put(context.Background(), "school_db_v6", []byte(`{"x":[]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

type failingBlobStore struct {
	getErr error
	putErr error
	blob   []byte
}

func (f *failingBlobStore) Get(context.Context, string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.blob, nil
}

func (f *failingBlobStore) Put(context.Context, string, []byte) error {
	return f.putErr
}

func TestSnapshotRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepository(NewMemoryBlobStore(), "school_db_v6", balanceNote, nil)

	classes, migrated, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, migrated)
	assert.Empty(t, classes)

	class := models.NewClass("5A")
	class.Students = append(class.Students, models.NewStudent("s-1", "أحمد علي"))
	size, err := repo.Save(ctx, []*models.Class{class})
	require.NoError(t, err)
	assert.Positive(t, size)

	raw, err := repo.Raw(ctx)
	require.NoError(t, err)
	assert.Len(t, raw, size)

	loaded, _, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, []string{"أحمد علي"}, loaded[0].Names())
}

func TestSnapshotRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	repo := NewSnapshotRepository(&failingBlobStore{blob: []byte("[")}, "k", balanceNote, nil)
	_, _, err := repo.Load(ctx)
	assert.True(t, errors.Is(err, appErrors.ErrCorruptSnapshot))

	repo = NewSnapshotRepository(&failingBlobStore{blob: []byte(`{"5A":[{"name":"Omar Ali","score":20000000}]}`)}, "k", balanceNote, nil)
	_, _, err = repo.Load(ctx)
	assert.True(t, errors.Is(err, appErrors.ErrCorruptSnapshot))

	repo = NewSnapshotRepository(&failingBlobStore{getErr: errors.New("dial tcp")}, "k", balanceNote, nil)
	_, _, err = repo.Load(ctx)
	assert.True(t, errors.Is(err, appErrors.ErrPersistence))

	repo = NewSnapshotRepository(&failingBlobStore{putErr: errors.New("disk full")}, "k", balanceNote, nil)
	_, err = repo.Save(ctx, []*models.Class{models.NewClass("5A")})
	assert.True(t, errors.Is(err, appErrors.ErrPersistence))

	repo = NewSnapshotRepository(&failingBlobStore{blob: []byte(`{"5A":[{"name":"Omar Ali","score":1}]}`)}, "k", balanceNote, nil)
	classes, migrated, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, migrated)
	assert.Equal(t, 1, classes[0].Students[0].Score())
}
