package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/trentd187/task-status/internal/config"
	"github.com/trentd187/task-status/internal/models"
)

// newTestStore returns a Store on a fresh SQLite file with the statuses table created
// by the real migrations. Each call to the connector opens a new connection to that
// file, exactly as the production store does against postgres.
func newTestStore(t *testing.T) (*Store, Connector) {
	t.Helper()

	cfg := &config.Config{
		DBDriver: config.DriverSQLite,
		DBName:   filepath.Join(t.TempDir(), "statuses.db"),
	}
	connect := NewConnector(cfg)
	store := NewStore(connect, cfg.DBDriver)
	require.NoError(t, store.Initialize(context.Background()))

	return store, connect
}

func failingConnector() Connector {
	return func() (*gorm.DB, error) {
		return nil, errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	}
}

func countRows(t *testing.T, connect Connector) int64 {
	t.Helper()

	db, err := connect()
	require.NoError(t, err)
	defer Close(db)

	var n int64
	require.NoError(t, db.Model(&models.Status{}).Count(&n).Error)
	return n
}

func TestStore_InitializeIsIdempotent(t *testing.T) {
	store, connect := newTestStore(t)

	require.NoError(t, store.Initialize(context.Background()))
	require.NoError(t, store.Initialize(context.Background()))

	assert.Equal(t, int64(0), countRows(t, connect))
}

func TestStore_InitializeConnectionFailure(t *testing.T) {
	store := NewStore(failingConnector(), config.DriverSQLite)

	err := store.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestStore_ListStatuses(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	t.Run("empty table", func(t *testing.T) {
		statuses, err := store.ListStatuses(ctx)
		require.NoError(t, err)
		assert.NotNil(t, statuses)
		assert.Empty(t, statuses)
	})

	t.Run("insertion order", func(t *testing.T) {
		_, err := store.CreateStatus(ctx, 1, "In Progress")
		require.NoError(t, err)
		_, err = store.CreateStatus(ctx, 2, "Completed")
		require.NoError(t, err)

		statuses, err := store.ListStatuses(ctx)
		require.NoError(t, err)
		require.Len(t, statuses, 2)

		assert.Equal(t, int64(1), statuses[0].TaskID)
		assert.Equal(t, "In Progress", statuses[0].Status)
		assert.Equal(t, int64(2), statuses[1].TaskID)
		assert.Equal(t, "Completed", statuses[1].Status)

		// Timestamps come from the column defaults, not from the application.
		for _, s := range statuses {
			require.NotNil(t, s.CreatedAt)
			require.NotNil(t, s.UpdatedAt)
			assert.WithinDuration(t, time.Now(), *s.CreatedAt, time.Minute)
			assert.Equal(t, *s.CreatedAt, *s.UpdatedAt)
		}
	})
}

func TestStore_CreateStatus(t *testing.T) {
	store, connect := newTestStore(t)
	ctx := context.Background()

	first, err := store.CreateStatus(ctx, 7, "Pending")
	require.NoError(t, err)
	assert.Positive(t, first.ID)
	assert.Equal(t, int64(7), first.TaskID)
	assert.Equal(t, "Pending", first.Status)

	// ids are unique and strictly increasing for a single writer
	prev := first.ID
	for i := 0; i < 5; i++ {
		s, err := store.CreateStatus(ctx, int64(i), "Done")
		require.NoError(t, err)
		assert.Greater(t, s.ID, prev)
		prev = s.ID
	}

	assert.Equal(t, int64(6), countRows(t, connect))
}

func TestStore_UpdatedAtRefreshedOnUpdate(t *testing.T) {
	store, connect := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateStatus(ctx, 3, "In Progress")
	require.NoError(t, err)

	db, err := connect()
	require.NoError(t, err)
	defer Close(db)

	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Exec(
		"UPDATE statuses SET created_at = ?, updated_at = ? WHERE id = ?", past, past, created.ID,
	).Error)
	require.NoError(t, db.Exec(
		"UPDATE statuses SET status = ? WHERE id = ?", "Completed", created.ID,
	).Error)

	var got models.Status
	require.NoError(t, db.First(&got, created.ID).Error)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, got.UpdatedAt.After(past), "updated_at should be refreshed, got %v", got.UpdatedAt)
}

func TestStore_ConnectionFailure(t *testing.T) {
	_, connect := newTestStore(t)
	store := NewStore(failingConnector(), config.DriverSQLite)
	ctx := context.Background()

	_, err := store.ListStatuses(ctx)
	assert.ErrorIs(t, err, ErrConnectionFailed)

	_, err = store.CreateStatus(ctx, 1, "In Progress")
	assert.ErrorIs(t, err, ErrConnectionFailed)

	assert.Equal(t, int64(0), countRows(t, connect))
}

func TestStore_QueryErrorIsNotConnectionFailure(t *testing.T) {
	// A reachable database without the statuses table: the connection works but the query doesn't.
	cfg := &config.Config{
		DBDriver: config.DriverSQLite,
		DBName:   filepath.Join(t.TempDir(), "empty.db"),
	}
	store := NewStore(NewConnector(cfg), cfg.DBDriver)

	_, err := store.ListStatuses(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConnectionFailed)
	assert.Contains(t, err.Error(), "statuses")
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(&config.Config{DBDriver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestFormatTimestamp(t *testing.T) {
	assert.Nil(t, FormatTimestamp(nil))

	ts := time.Date(2024, 3, 9, 14, 5, 0, 0, time.FixedZone("CET", 3600))
	got := FormatTimestamp(&ts)
	require.NotNil(t, got)
	assert.Equal(t, "2024-03-09T13:05:00Z", *got)
}
