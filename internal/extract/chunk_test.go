package extract

import (
	"strings"
	"testing"

	"github.com/sevenseconds/vibescout/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestChunkParentBody_SmallParentYieldsNoChunks(t *testing.T) {
	t.Parallel()

	parent := types.Block{Name: "f", StartLine: 1, EndLine: 10}
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "x"
	}
	assert.Nil(t, chunkParentBody(parent, lines, 1))
}

func TestChunkParentBody_LargeParentSplitsIntoChunksOfAtMost20Lines(t *testing.T) {
	t.Parallel()

	parent := types.Block{Name: "f", ParentName: "", StartLine: 1, EndLine: 60, FilePath: "a.go"}
	lines := make([]string, 60)
	for i := range lines {
		lines[i] = "x"
	}

	chunks := chunkParentBody(parent, lines, 1)
	assert.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Equal(t, types.BlockChunk, c.Type)
		assert.Equal(t, "f", c.ParentName)
		lineCount := c.EndLine - c.StartLine + 1
		assert.LessOrEqual(t, lineCount, chunkMaxLines)
	}
}

func TestChunkParentBody_CutsAtBoundaryKeyword(t *testing.T) {
	t.Parallel()

	var lines []string
	for i := 0; i < 5; i++ {
		lines = append(lines, "x := 1")
	}
	lines = append(lines, "if x > 0 {")
	for i := 0; i < 50; i++ {
		lines = append(lines, "y := 2")
	}

	parent := types.Block{Name: "f", StartLine: 1, EndLine: len(lines), FilePath: "a.go"}
	chunks := chunkParentBody(parent, lines, 1)

	assert.True(t, strings.Contains(chunks[0].Content, "x := 1"))
	assert.False(t, strings.Contains(chunks[0].Content, "if x > 0"))
}
