package extract

import (
	"testing"

	"github.com/sevenseconds/vibescout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMarkdown = `# Title

intro paragraph

## Section One

first section body

## Section Two

second section body
`

func TestMarkdownStrategy_NonePolicyYieldsSingleBlock(t *testing.T) {
	t.Parallel()

	blocks, _, err := NewMarkdownStrategy(MarkdownChunkNone).Extract("doc.md", []byte(sampleMarkdown))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, types.CategoryDocumentation, blocks[0].Category)
}

func TestMarkdownStrategy_HeadingsPolicySplitsPerHeading(t *testing.T) {
	t.Parallel()

	blocks, _, err := NewMarkdownStrategy(MarkdownChunkHeadings).Extract("doc.md", []byte(sampleMarkdown))
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, "Title", blocks[0].Name)
	assert.Equal(t, "Section One", blocks[1].Name)
	assert.Equal(t, "Section Two", blocks[2].Name)
}

func TestMarkdownStrategy_ParagraphsPolicySplitsOnBlankLines(t *testing.T) {
	t.Parallel()

	blocks, _, err := NewMarkdownStrategy(MarkdownChunkParagraphs).Extract("doc.md", []byte(sampleMarkdown))
	require.NoError(t, err)
	assert.Len(t, blocks, 6)
}
