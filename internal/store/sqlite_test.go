package store

import (
	"context"
	"testing"

	"github.com/isdelr/auth-api/internal/database"
	"github.com/isdelr/auth-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db)
}

func TestSQLiteStore_InsertAndFind(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := s.Insert(ctx, models.User{Name: "Alice Smith", Email: "alice@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	byEmail, err := s.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "Alice Smith", byEmail.Name)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)
}

func TestSQLiteStore_NotFound(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.UpdatePasswordHash(ctx, "missing", "hash")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_DuplicateEmail(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, models.User{Name: "Alice Smith", Email: "alice@example.com", PasswordHash: "h1"})
	require.NoError(t, err)

	_, err = s.Insert(ctx, models.User{Name: "Another Alice", Email: "alice@example.com", PasswordHash: "h2"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSQLiteStore_UpdatePasswordHash(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := s.Insert(ctx, models.User{Name: "Alice Smith", Email: "alice@example.com", PasswordHash: "old"})
	require.NoError(t, err)

	require.NoError(t, s.UpdatePasswordHash(ctx, created.ID, "new"))

	got, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)
	assert.NoError(t, s.Ping(ctx))
}
