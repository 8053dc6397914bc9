// Package provider implements the embedding/summarizer capability
// abstraction (spec.md §4.3): interfaces every AI backend conforms to, a
// local bundled-runtime implementation, a mock for tests, and the prompt
// template rendering and conversation-history truncation shared by every
// backend.
package provider

import "context"

// EmbedMode distinguishes query embeddings from passage embeddings, since
// some embedding models use asymmetric encoders for the two, grounded on
// internal/embed/provider.go's EmbedMode.
type EmbedMode string

const (
	EmbedModeQuery   EmbedMode = "query"
	EmbedModePassage EmbedMode = "passage"
)

// EmbeddingProvider converts text into fixed-dimension vectors.
type EmbeddingProvider interface {
	Name() string
	Embed(ctx context.Context, text string, mode EmbedMode) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string, mode EmbedMode) ([][]float32, error)
	Dimensions() int
	Close() error
}

// SummaryType distinguishes a parent declaration's summary from a chunk's,
// per spec.md §4.3's summarize options.
type SummaryType string

const (
	SummaryTypeParent SummaryType = "parent"
	SummaryTypeChunk  SummaryType = "chunk"
)

// SummarizeOptions carries the named slots a summarize prompt template may
// reference.
type SummarizeOptions struct {
	FileName       string
	ProjectName    string
	Type           SummaryType
	ParentName     string
	PromptTemplate string // unrendered template body with {{slot}} placeholders; caller resolves WHICH template, provider renders it
	SectionName    string
}

// Role distinguishes turns in a conversation history.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of conversation history passed to GenerateResponse.
type Message struct {
	Role    Role
	Content string
}

// SummarizerProvider generates natural-language text from code, search
// context, or conversation history.
type SummarizerProvider interface {
	Name() string
	Summarize(ctx context.Context, text string, opts SummarizeOptions) (string, error)
	GenerateBestQuestion(ctx context.Context, query, searchContext string) (string, error)
	GenerateResponse(ctx context.Context, prompt, searchContext string, history []Message) (string, error)
	Close() error
}

// RerankerProvider scores (query, candidate) pairs with a local text-pair
// classification model, per spec.md §4.10 step 4's cross-encoder rerank.
type RerankerProvider interface {
	Name() string
	// Rerank scores query against each of candidates, returning one score
	// per candidate in the same order (higher is more relevant).
	Rerank(ctx context.Context, query string, candidates []string) ([]float64, error)
	Close() error
}
