package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, _, err := OpenAndMigrate(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}
