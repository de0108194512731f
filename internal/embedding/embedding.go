// Package embedding provides a pluggable interface for text embedding providers.
package embedding

import (
	"context"
	"fmt"
)

// Vector is a float32 embedding vector.
type Vector = []float32

// DefaultDims is the vector length of the default hash embedder.
const DefaultDims = 256

// Embedder generates embedding vectors from text. Implementations must be
// deterministic and return Dims() components for every input.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
	Dims() int
	// ID identifies the model; vectors from different IDs are not comparable.
	ID() string
}

// New returns custom when it is non-nil, ignoring dims. Otherwise it builds
// the hash embedder with dims components (DefaultDims when dims <= 0).
func New(custom Embedder, dims int) Embedder {
	if custom != nil {
		return custom
	}
	if dims <= 0 {
		dims = DefaultDims
	}
	return NewHashEmbedder(dims)
}

// Settings selects and configures an embedding provider.
type Settings struct {
	Provider string // "hash" | "ollama" | "openai"
	Dims     int
	Model    string
	URL      string
	APIKey   string
}

// NewFromSettings creates an embedder for the configured provider.
func NewFromSettings(s Settings) (Embedder, error) {
	switch s.Provider {
	case "", "hash":
		return New(nil, s.Dims), nil
	case "ollama":
		model := s.Model
		if model == "" {
			model = "nomic-embed-text"
		}
		return NewOllamaEmbedder(s.URL, model, s.Dims), nil
	case "openai":
		return NewOpenAIEmbedder(s.URL, s.APIKey, s.Model, s.Dims)
	default:
		return nil, fmt.Errorf("unknown embed provider %q (valid: hash, ollama, openai)", s.Provider)
	}
}
