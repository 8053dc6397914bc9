package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbeddingProvider_DeterministicAcrossCalls(t *testing.T) {
	t.Parallel()

	p := NewMockEmbeddingProvider()
	v1, err := p.Embed(context.Background(), "hello", EmbedModePassage)
	require.NoError(t, err)
	v2, err := p.Embed(context.Background(), "hello", EmbedModePassage)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Len(t, v1, p.Dimensions())
}

func TestMockEmbeddingProvider_DiffersByMode(t *testing.T) {
	t.Parallel()

	p := NewMockEmbeddingProvider()
	query, err := p.Embed(context.Background(), "hello", EmbedModeQuery)
	require.NoError(t, err)
	passage, err := p.Embed(context.Background(), "hello", EmbedModePassage)
	require.NoError(t, err)
	assert.NotEqual(t, query, passage)
}

func TestMockEmbeddingProvider_EmbedErrorPropagates(t *testing.T) {
	t.Parallel()

	p := NewMockEmbeddingProvider()
	p.SetEmbedError(errors.New("boom"))
	_, err := p.Embed(context.Background(), "hello", EmbedModeQuery)
	assert.Error(t, err)
}

func TestMockEmbeddingProvider_ClosedTracksState(t *testing.T) {
	t.Parallel()

	p := NewMockEmbeddingProvider()
	assert.False(t, p.IsClosed())
	require.NoError(t, p.Close())
	assert.True(t, p.IsClosed())
}

func TestMockSummarizerProvider_SummarizeUsesOptions(t *testing.T) {
	t.Parallel()

	p := NewMockSummarizerProvider()
	out, err := p.Summarize(context.Background(), "code", SummarizeOptions{FileName: "a.go", Type: SummaryTypeParent})
	require.NoError(t, err)
	assert.Contains(t, out, "a.go")
}

func TestMockSummarizerProvider_GenerateResponseReportsTruncatedHistoryCount(t *testing.T) {
	t.Parallel()

	p := NewMockSummarizerProvider()
	var history []Message
	for i := 0; i < 20; i++ {
		history = append(history, Message{Role: RoleUser, Content: "x"})
	}
	out, err := p.GenerateResponse(context.Background(), "q", "ctx", history)
	require.NoError(t, err)
	assert.Contains(t, out, "8 history turns")
}
