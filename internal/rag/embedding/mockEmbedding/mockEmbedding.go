package mockEmbedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/embedding"
)

type client struct {
	dimension int
}

// NewEmbedder returns the offline embedder: a deterministic pseudo-random
// unit vector seeded by a hash of the input text. The same text always
// yields a bit-identical vector, so demo runs and tests are reproducible
// without provider credentials. The vectors carry no real semantics.
func NewEmbedder(dimension int) embedding.Embedder {
	if dimension <= 0 {
		dimension = config.EmbeddingDimension()
	}
	return &client{dimension: dimension}
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	state := hashSeed(query)
	if state == 0 {
		// xorshift sticks at zero forever
		state = 0x9747b28c
	}

	vector := make([]float32, c.dimension)
	var norm float64
	for i := range vector {
		state = xorshift32(state)
		vector[i] = float32(int32(state)) / float32(math.MaxInt32)
		norm += float64(vector[i]) * float64(vector[i])
	}

	if norm == 0 {
		vector[0] = 1
		return vector, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vector {
		vector[i] *= scale
	}
	return vector, nil
}

func hashSeed(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func xorshift32(state uint32) uint32 {
	state ^= state << 13
	state ^= state >> 17
	state ^= state << 5
	return state
}
