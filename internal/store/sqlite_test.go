package store

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevenseconds/vibescout/internal/types"
)

func init() {
	InitVectorExtension()
}

func openTestStore(t *testing.T) *sqliteStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewSQLite(db, 4)
	require.NoError(t, err)
	st, ok := s.(*sqliteStore)
	require.True(t, ok)
	return st
}

func sampleRecord(name, filePath string, vec []float32) types.VectorRecord {
	return types.VectorRecord{
		Collection:  "default",
		ProjectName: "proj",
		Name:        name,
		Type:        types.BlockFunction,
		Category:    types.CategoryCode,
		FilePath:    filePath,
		StartLine:   1,
		EndLine:     10,
		Content:     name + " body",
		Summary:     "summary of " + name,
		Vector:      vec,
	}
}

func TestSQLite_InsertThenSearchReturnsNearest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	records := []types.VectorRecord{
		sampleRecord("alpha", "a.go", []float32{1, 0, 0, 0}),
		sampleRecord("beta", "b.go", []float32{0, 1, 0, 0}),
	}
	require.NoError(t, s.Insert(ctx, "model-a", records))

	got, err := s.Search(ctx, []float32{1, 0, 0, 0}, SearchOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alpha", got[0].Name)
}

func TestSQLite_InsertEnforcesModelMismatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Insert(ctx, "model-a", []types.VectorRecord{
		sampleRecord("alpha", "a.go", []float32{1, 0, 0, 0}),
	}))

	err := s.Insert(ctx, "model-b", []types.VectorRecord{
		sampleRecord("beta", "b.go", []float32{0, 1, 0, 0}),
	})
	require.ErrorIs(t, err, ErrModelMismatch)
}

func TestSQLite_CurrentModelEmptyBeforeInsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	model, err := s.CurrentModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", model)
}

func TestSQLite_HybridSearchListsFTSResultsFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	records := []types.VectorRecord{
		sampleRecord("needle", "needle.go", []float32{0, 0, 1, 0}),
		sampleRecord("other", "other.go", []float32{1, 0, 0, 0}),
	}
	require.NoError(t, s.Insert(ctx, "model-a", records))

	got, err := s.HybridSearch(ctx, "needle", []float32{1, 0, 0, 0}, SearchOptions{Limit: 2})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.True(t, got[0].FromFTS)
	assert.Equal(t, "needle", got[0].Record.Name)
}

func TestSQLite_DeleteByFileRemovesRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Insert(ctx, "model-a", []types.VectorRecord{
		sampleRecord("alpha", "a.go", []float32{1, 0, 0, 0}),
	}))
	require.NoError(t, s.DeleteByFile(ctx, "a.go"))

	got, err := s.Search(ctx, []float32{1, 0, 0, 0}, SearchOptions{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_ClearRemovesEverything(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Insert(ctx, "model-a", []types.VectorRecord{
		sampleRecord("alpha", "a.go", []float32{1, 0, 0, 0}),
	}))
	require.NoError(t, s.Clear(ctx))

	model, err := s.CurrentModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", model)
}

func TestSQLite_DependenciesRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	dep := types.DependencyRecord{
		FilePath:    "a.go",
		ProjectName: "proj",
		Collection:  "default",
		Imports: []types.ImportEdge{
			{Source: "fmt", Symbols: map[string]struct{}{"Println": {}}},
		},
		Exports: []string{"Foo"},
	}
	require.NoError(t, s.UpsertDependency(ctx, dep))

	got, err := s.Dependencies(ctx, "proj")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.go", got[0].FilePath)
	assert.Equal(t, []string{"Foo"}, got[0].Exports)
}

func TestSQLite_WatchListCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	entry := types.WatchListEntry{FolderPath: "/repo", ProjectName: "proj", Collection: "default"}
	require.NoError(t, s.AddWatch(ctx, entry))

	got, err := s.ListWatches(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "/repo", got[0].FolderPath)

	require.NoError(t, s.RemoveWatch(ctx, "/repo"))
	got, err = s.ListWatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_MoveProjectToCollectionUpdatesRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Insert(ctx, "model-a", []types.VectorRecord{
		sampleRecord("alpha", "a.go", []float32{1, 0, 0, 0}),
	}))
	require.NoError(t, s.MoveProjectToCollection(ctx, "proj", "archived"))

	got, err := s.Search(ctx, []float32{1, 0, 0, 0}, SearchOptions{Collection: "archived", Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "archived", got[0].Collection)
}

func TestMigrateCategoryColumn_NoopWhenColumnPresent(t *testing.T) {
	t.Parallel()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, createSchema(db, 4))

	require.NoError(t, migrateCategoryColumn(db))
	present, err := columnExists(db, "code_search", "category")
	require.NoError(t, err)
	assert.True(t, present)
}
