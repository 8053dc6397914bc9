package hashstore

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sevenseconds/vibescout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	return db
}

func TestStore_GetMissingReturnsFalse(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	defer db.Close()
	store, err := New(db)
	require.NoError(t, err)

	_, ok, err := store.Get("a.go")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_PutBatchThenGet(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	defer db.Close()
	store, err := New(db)
	require.NoError(t, err)

	err = store.PutBatch([]types.FileFingerprint{
		{FilePath: "a.go", Hash: "aaa"},
		{FilePath: "b.go", Hash: "bbb"},
	})
	require.NoError(t, err)

	hash, ok, err := store.Get("a.go")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "aaa", hash)
}

func TestStore_PutBatchUpsertsExisting(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	defer db.Close()
	store, err := New(db)
	require.NoError(t, err)

	require.NoError(t, store.PutBatch([]types.FileFingerprint{{FilePath: "a.go", Hash: "aaa"}}))
	require.NoError(t, store.PutBatch([]types.FileFingerprint{{FilePath: "a.go", Hash: "ccc"}}))

	hash, ok, err := store.Get("a.go")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ccc", hash)
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	defer db.Close()
	store, err := New(db)
	require.NoError(t, err)

	require.NoError(t, store.PutBatch([]types.FileFingerprint{{FilePath: "a.go", Hash: "aaa"}}))
	require.NoError(t, store.Delete("a.go"))

	_, ok, err := store.Get("a.go")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Keys(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	defer db.Close()
	store, err := New(db)
	require.NoError(t, err)

	require.NoError(t, store.PutBatch([]types.FileFingerprint{
		{FilePath: "a.go", Hash: "aaa"},
		{FilePath: "b.go", Hash: "bbb"},
	}))

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go", "b.go"}, keys)
}

func TestFingerprint_IsDeterministicMD5Hex(t *testing.T) {
	t.Parallel()

	h1 := Fingerprint([]byte("package main"))
	h2 := Fingerprint([]byte("package main"))
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 32)
}
