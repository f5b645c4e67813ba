package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/phonebook-api/internal/config"
	"github.com/aanand-mishra/phonebook-api/internal/storage"
	"github.com/aanand-mishra/phonebook-api/internal/storage/storagetest"
)

// setupTestDB creates a new database file and closes it when the test
// completes.
func setupTestDB(t *testing.T, path string) *SQLite {
	t.Helper()
	db, err := New(&config.Config{Storage: config.Storage{Driver: config.DriverSQLite, DSN: path}})
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLite(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return setupTestDB(t, filepath.Join(t.TempDir(), "phonebook.db"))
	})
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "phonebook.db")

	first, err := New(&config.Config{Storage: config.Storage{DSN: path}})
	require.NoError(t, err)
	created, err := first.CreateContact(ctx, "Arto Hellas", "040-123456")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := setupTestDB(t, path)
	got, err := second.GetContactByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestClosedDBIsNotAStorageSentinel(t *testing.T) {
	ctx := context.Background()
	db, err := New(&config.Config{Storage: config.Storage{DSN: filepath.Join(t.TempDir(), "closed.db")}})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = db.GetContacts(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	assert.NotErrorIs(t, err, storage.ErrDuplicateName)
}
