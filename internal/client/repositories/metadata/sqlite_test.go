package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/skincare/internal/client/migrations"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))
	return db
}

func TestSetAndGet_InsertThenGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "user", []byte(`{"uid":"u1"}`)))

	v, err := r.Get(ctx, "user")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"uid":"u1"}`), v)
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_UpsertOverwritesValue(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "user", []byte("old")))
	require.NoError(t, r.Set(ctx, "user", []byte("new")))

	v, err := r.Get(ctx, "user")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestSet_KeysAreIndependent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "user", []byte{0xAA}))
	require.NoError(t, r.Set(ctx, "signin", []byte{0xBB, 0xCC}))

	v, err := r.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA}, v)
	v, err = r.Get(ctx, "signin")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xBB, 0xCC}, v)
}

func TestDelete_RemovesKey_AndIsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "user", []byte("v")))
	require.NoError(t, r.Delete(ctx, "user"))
	require.NoError(t, r.Delete(ctx, "user"))

	v, err := r.Get(ctx, "user")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestClear_RemovesAllKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Set(ctx, "b", []byte("2")))
	require.NoError(t, r.Clear(ctx))

	for _, k := range []string{"a", "b"} {
		v, err := r.Get(ctx, k)
		require.NoError(t, err)
		assert.Nil(t, v, k)
	}
}

func TestRepository_DBErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get local_state[user]")

	err = r.Set(ctx, "user", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set local_state[user]")

	err = r.Delete(ctx, "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete local_state[user]")

	err = r.Clear(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear local_state")
}

var _ Repository = (*SQLiteRepository)(nil)
var _ Repository = (*RedisRepository)(nil)
