package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermarkAbsent(t *testing.T) {
	repo := NewWatermarkRepository(newTestDB(t))

	ts, found, err := repo.GetWatermark(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, ts)
}

func TestSetWatermarkIsMonotonic(t *testing.T) {
	ctx := context.Background()
	repo := NewWatermarkRepository(newTestDB(t))

	require.NoError(t, repo.SetWatermark(ctx, 1, "2023-07-03 12:00:00"))

	ts, found, err := repo.GetWatermark(ctx, 1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2023-07-03 12:00:00", ts)

	require.NoError(t, repo.SetWatermark(ctx, 1, "2023-07-03 13:00:00"))
	ts, _, err = repo.GetWatermark(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "2023-07-03 13:00:00", ts)

	// An older timestamp never moves the watermark backwards.
	require.NoError(t, repo.SetWatermark(ctx, 1, "2023-07-01 00:00:00"))
	ts, _, err = repo.GetWatermark(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "2023-07-03 13:00:00", ts)
}

func TestGetWatermarkClosedDB(t *testing.T) {
	db := newTestDB(t)
	repo := NewWatermarkRepository(db)
	require.NoError(t, db.Close())

	_, _, err := repo.GetWatermark(context.Background(), 1)
	var storageErr *StorageError
	assert.ErrorAs(t, err, &storageErr)
}
