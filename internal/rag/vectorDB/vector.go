package vectorDB

import (
	"context"
	"math"

	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
)

// Store holds chunk records and answers similarity queries. Chunks are
// append-only and immutable once inserted; removal is only wholesale
// (Clear) or per namespace (ClearNamespace).
type Store interface {
	Add(ctx context.Context, chunk commonModels.Chunk) error
	AddMany(ctx context.Context, chunks []commonModels.Chunk) error

	// SimilaritySearch ranks candidates by cosine similarity against the
	// query vector, keeps only those scoring >= threshold and returns at
	// most k results sorted by descending similarity. An empty namespace
	// means all chunks are candidates.
	SimilaritySearch(ctx context.Context, queryVector []float32, k int, threshold float32, namespace string) ([]commonModels.Chunk, error)

	Clear(ctx context.Context) error
	ClearNamespace(ctx context.Context, namespace string) error

	// GetAll returns a defensive copy of every stored chunk.
	GetAll(ctx context.Context) ([]commonModels.Chunk, error)
	Count(ctx context.Context, namespace string) (int, error)
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|). Mismatched lengths or a
// zero-magnitude vector score 0, never an error, so search stays total
// even with mixed embedding models in one store.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
