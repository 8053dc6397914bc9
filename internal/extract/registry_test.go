package extract

import (
	"testing"

	"github.com/sevenseconds/vibescout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStrategy struct {
	blocks []types.Block
	meta   Metadata
	err    error
	panics bool
}

func (s stubStrategy) Extract(string, []byte) ([]types.Block, Metadata, error) {
	if s.panics {
		panic("boom")
	}
	return s.blocks, s.meta, s.err
}

func TestRegistry_DispatchesByExtension(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register([]string{".foo"}, stubStrategy{blocks: []types.Block{{Name: "x"}}})

	blocks, _ := r.Extract("a.foo", []byte("irrelevant"))
	require.Len(t, blocks, 1)
	assert.Equal(t, "x", blocks[0].Name)
}

func TestRegistry_UnclaimedExtensionFallsBackToWholeFile(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	blocks, meta := r.Extract("a.unknown", []byte("line one\nline two\n"))

	require.Len(t, blocks, 1)
	assert.Equal(t, types.BlockFile, blocks[0].Type)
	assert.Equal(t, 1, blocks[0].StartLine)
	assert.Empty(t, meta.Imports)
}

func TestRegistry_StrategyErrorFallsBackToWholeFile(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register([]string{".foo"}, stubStrategy{err: assertError{}})

	blocks, _ := r.Extract("a.foo", []byte("content"))
	require.Len(t, blocks, 1)
	assert.Equal(t, types.BlockFile, blocks[0].Type)
}

func TestRegistry_StrategyPanicFallsBackToWholeFile(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register([]string{".foo"}, stubStrategy{panics: true})

	blocks, _ := r.Extract("a.foo", []byte("content"))
	require.Len(t, blocks, 1)
	assert.Equal(t, types.BlockFile, blocks[0].Type)
}

func TestRegistry_ExtensionMatchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register([]string{".foo"}, stubStrategy{blocks: []types.Block{{Name: "x"}}})

	blocks, _ := r.Extract("a.FOO", []byte("content"))
	require.Len(t, blocks, 1)
	assert.Equal(t, "x", blocks[0].Name)
}

type assertError struct{}

func (assertError) Error() string { return "stub failure" }
