package provider

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"
)

// MockEmbeddingProvider generates deterministic embeddings from a text
// hash, grounded on internal/embed/mock.go's MockProvider.
type MockEmbeddingProvider struct {
	mu         sync.Mutex
	dimensions int
	closed     bool
	embedErr   error
}

// NewMockEmbeddingProvider returns a deterministic embedding provider for tests.
func NewMockEmbeddingProvider() *MockEmbeddingProvider {
	return &MockEmbeddingProvider{dimensions: 384}
}

func (p *MockEmbeddingProvider) Name() string { return "mock" }

func (p *MockEmbeddingProvider) SetEmbedError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.embedErr = err
}

func (p *MockEmbeddingProvider) Embed(ctx context.Context, text string, mode EmbedMode) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text}, mode)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *MockEmbeddingProvider) EmbedBatch(ctx context.Context, texts []string, mode EmbedMode) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.embedErr != nil {
		return nil, p.embedErr
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		hash := sha256.Sum256([]byte(string(mode) + ":" + text))
		vec := make([]float32, p.dimensions)
		for j := range vec {
			offset := (j * 4) % len(hash)
			val := binary.BigEndian.Uint32(hash[offset : offset+4])
			vec[j] = (float32(val)/float32(1<<32))*2.0 - 1.0
		}
		out[i] = vec
	}
	return out, nil
}

func (p *MockEmbeddingProvider) Dimensions() int { return p.dimensions }

func (p *MockEmbeddingProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *MockEmbeddingProvider) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// MockSummarizerProvider returns canned, deterministic text for tests.
type MockSummarizerProvider struct {
	mu     sync.Mutex
	closed bool
}

// NewMockSummarizerProvider returns a deterministic summarizer provider for tests.
func NewMockSummarizerProvider() *MockSummarizerProvider {
	return &MockSummarizerProvider{}
}

func (p *MockSummarizerProvider) Name() string { return "mock" }

func (p *MockSummarizerProvider) Summarize(ctx context.Context, text string, opts SummarizeOptions) (string, error) {
	return fmt.Sprintf("summary of %s (%s)", opts.FileName, opts.Type), nil
}

func (p *MockSummarizerProvider) GenerateBestQuestion(ctx context.Context, query, searchContext string) (string, error) {
	return fmt.Sprintf("best question for: %s", query), nil
}

func (p *MockSummarizerProvider) GenerateResponse(ctx context.Context, prompt, searchContext string, history []Message) (string, error) {
	truncated := TruncateHistory(history, 0)
	return fmt.Sprintf("response to %q with %d history turns", prompt, len(truncated)), nil
}

func (p *MockSummarizerProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *MockSummarizerProvider) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// MockRerankerProvider scores each candidate from a SHA-256 hash of the
// query and candidate text, deterministic and good enough to exercise sort
// order in tests.
type MockRerankerProvider struct {
	mu     sync.Mutex
	closed bool
}

// NewMockRerankerProvider returns a deterministic reranker for tests.
func NewMockRerankerProvider() *MockRerankerProvider {
	return &MockRerankerProvider{}
}

func (p *MockRerankerProvider) Name() string { return "mock" }

func (p *MockRerankerProvider) Rerank(ctx context.Context, query string, candidates []string) ([]float64, error) {
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		hash := sha256.Sum256([]byte(query + ":" + c))
		scores[i] = float64(binary.BigEndian.Uint32(hash[:4])) / float64(1<<32)
	}
	return scores, nil
}

func (p *MockRerankerProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *MockRerankerProvider) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
