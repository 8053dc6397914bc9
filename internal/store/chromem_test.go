package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevenseconds/vibescout/internal/types"
)

func TestChromem_InsertThenSearchReturnsNearest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := NewChromem(4)
	require.NoError(t, err)
	defer s.Close()

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

func TestChromem_InsertEnforcesModelMismatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := NewChromem(4)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Insert(ctx, "model-a", []types.VectorRecord{
		sampleRecord("alpha", "a.go", []float32{1, 0, 0, 0}),
	}))

	err = s.Insert(ctx, "model-b", []types.VectorRecord{
		sampleRecord("beta", "b.go", []float32{0, 1, 0, 0}),
	})
	require.ErrorIs(t, err, ErrModelMismatch)
}

func TestChromem_SearchPostFiltersByCategory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := NewChromem(4)
	require.NoError(t, err)
	defer s.Close()

	doc := sampleRecord("readme", "README.md", []float32{1, 0, 0, 0})
	doc.Category = types.CategoryDocumentation
	require.NoError(t, s.Insert(ctx, "model-a", []types.VectorRecord{
		sampleRecord("alpha", "a.go", []float32{1, 0, 0, 0}),
		doc,
	}))

	got, err := s.Search(ctx, []float32{1, 0, 0, 0}, SearchOptions{
		Categories: []types.BlockCategory{types.CategoryDocumentation},
		Limit:      10,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "readme", got[0].Name)
}

func TestChromem_HybridSearchListsFTSResultsFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := NewChromem(4)
	require.NoError(t, err)
	defer s.Close()

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

func TestChromem_DeleteByFileRemovesRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := NewChromem(4)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Insert(ctx, "model-a", []types.VectorRecord{
		sampleRecord("alpha", "a.go", []float32{1, 0, 0, 0}),
	}))
	require.NoError(t, s.DeleteByFile(ctx, "a.go"))

	got, err := s.Search(ctx, []float32{1, 0, 0, 0}, SearchOptions{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChromem_ClearResetsModelAndRecords(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := NewChromem(4)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Insert(ctx, "model-a", []types.VectorRecord{
		sampleRecord("alpha", "a.go", []float32{1, 0, 0, 0}),
	}))
	require.NoError(t, s.Clear(ctx))

	model, err := s.CurrentModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", model)
}

func TestChromem_MoveProjectToCollectionUpdatesRecords(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := NewChromem(4)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Insert(ctx, "model-a", []types.VectorRecord{
		sampleRecord("alpha", "a.go", []float32{1, 0, 0, 0}),
	}))
	require.NoError(t, s.MoveProjectToCollection(ctx, "proj", "archived"))

	got, err := s.Search(ctx, []float32{1, 0, 0, 0}, SearchOptions{Collection: "archived", Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "archived", got[0].Collection)
}

func TestChromem_WatchListCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := NewChromem(4)
	require.NoError(t, err)
	defer s.Close()

	entry := types.WatchListEntry{FolderPath: "/repo", ProjectName: "proj", Collection: "default"}
	require.NoError(t, s.AddWatch(ctx, entry))

	got, err := s.ListWatches(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, s.RemoveWatch(ctx, "/repo"))
	got, err = s.ListWatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
