package embedding

import "context"

// Embedder turns text into a fixed-dimension dense vector. Implementations
// are selected once at construction time (live provider or deterministic
// mock), never via runtime flag checks in call sites.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
}
