package memoryDB

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/vectorDB"
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
)

var logger = logger_i.NewLogger("InMem VectorStore")

// VectorStore is the default chunk store: a brute-force O(n) linear scan
// per query over an in-process slice. That is fine at tenant/demo corpus
// sizes; a production deployment swaps in the qdrant-backed store behind
// the same interface without touching any caller.
type VectorStore struct {
	mu     sync.RWMutex
	chunks []commonModels.Chunk
}

func NewVectorStore() *VectorStore {
	return &VectorStore{}
}

func (s *VectorStore) Add(ctx context.Context, chunk commonModels.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunk)
	return nil
}

func (s *VectorStore) AddMany(ctx context.Context, chunks []commonModels.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	return nil
}

func (s *VectorStore) SimilaritySearch(ctx context.Context, queryVector []float32, k int, threshold float32, namespace string) ([]commonModels.Chunk, error) {
	if k <= 0 {
		return nil, nil
	}
	namespace = strings.TrimSpace(namespace)

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		chunk commonModels.Chunk
		score float32
	}
	var candidates []scored
	for _, chunk := range s.chunks {
		if namespace != "" && chunk.Metadata.Namespace != namespace {
			continue
		}
		score := vectorDB.CosineSimilarity(queryVector, chunk.Embedding)
		if score >= threshold {
			candidates = append(candidates, scored{chunk: chunk, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]commonModels.Chunk, len(candidates))
	for i, c := range candidates {
		results[i] = c.chunk
	}
	logger.Debug("Similarity search", "candidates", len(s.chunks), "returned", len(results), "threshold", threshold)
	return results, nil
}

func (s *VectorStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	logger.Info("Cleared vector store")
	return nil
}

// ClearNamespace drops only chunks tagged with the given namespace. An
// empty or whitespace namespace is a no-op: untagged chunks can never be
// removed this way, only by Clear.
func (s *VectorStore) ClearNamespace(ctx context.Context, namespace string) error {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chunks[:0]
	removed := 0
	for _, chunk := range s.chunks {
		if chunk.Metadata.Namespace == namespace {
			removed++
			continue
		}
		kept = append(kept, chunk)
	}
	s.chunks = kept
	logger.Info("Cleared namespace", "namespace", namespace, "removed", removed)
	return nil
}

func (s *VectorStore) GetAll(ctx context.Context) ([]commonModels.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]commonModels.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

func (s *VectorStore) Count(ctx context.Context, namespace string) (int, error) {
	namespace = strings.TrimSpace(namespace)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if namespace == "" {
		return len(s.chunks), nil
	}

	count := 0
	for _, chunk := range s.chunks {
		if chunk.Metadata.Namespace == namespace {
			count++
		}
	}
	return count, nil
}
