package provider

import "fmt"

// DefaultEmbeddingDimensions is the vector width of the local embedding
// provider NewEmbeddingProvider builds.
const (
	DefaultEmbeddingDimensions = 384
)

// NewEmbeddingProvider creates an EmbeddingProvider for the given backend
// name, grounded on internal/embed/factory.go's NewProvider switch.
func NewEmbeddingProvider(name, scriptPath string) (EmbeddingProvider, error) {
	switch name {
	case "local", "":
		return NewLocalEmbeddingProvider(scriptPath, DefaultEmbeddingDimensions), nil
	case "mock":
		return NewMockEmbeddingProvider(), nil
	default:
		return nil, fmt.Errorf("provider: unsupported embedding provider %q (supported: local, mock)", name)
	}
}

// NewSummarizerProvider creates a SummarizerProvider for the given backend name.
func NewSummarizerProvider(name, scriptPath string) (SummarizerProvider, error) {
	switch name {
	case "local", "":
		return NewLocalSummarizerProvider(scriptPath), nil
	case "mock":
		return NewMockSummarizerProvider(), nil
	default:
		return nil, fmt.Errorf("provider: unsupported summarizer provider %q (supported: local, mock)", name)
	}
}

// NewRerankerProvider creates a RerankerProvider for the given backend name.
func NewRerankerProvider(name, scriptPath string) (RerankerProvider, error) {
	switch name {
	case "local", "":
		return NewLocalRerankerProvider(scriptPath), nil
	case "mock":
		return NewMockRerankerProvider(), nil
	default:
		return nil, fmt.Errorf("provider: unsupported reranker provider %q (supported: local, mock)", name)
	}
}
