package cache

import (
	"context"

	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/vectorDB"
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
)

var logger = logger_i.NewLogger("Semantic Cache")

// AnswerCache short-circuits generation for questions semantically close to
// ones already answered.
type AnswerCache interface {
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, queryVector []float32, answer string) error
}

type semanticCache struct {
	store vectorDB.Store
}

// NewSemanticCache keys answers by query embedding in its own store
// instance, separate from the chunk store so cached answers can never leak
// into retrieval results.
func NewSemanticCache(store vectorDB.Store) AnswerCache {
	return &semanticCache{store: store}
}

func (c *semanticCache) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	loggr.Info("Searching for cached answer")
	results, err := c.store.SimilaritySearch(ctx, queryVector, 1, config.CacheSimilarityCutoff, "")
	if err != nil {
		loggr.Error("Cache query failed", "error", err)
		return "", false, err
	}
	if len(results) == 0 {
		return "", false, nil
	}

	loggr.Info("---------------cache hit---------------------")
	return results[0].Content, true, nil
}

func (c *semanticCache) SaveToCache(ctx context.Context, id string, queryVector []float32, answer string) error {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	loggr.Debug("Saving answer to cache")
	err := c.store.Add(ctx, commonModels.Chunk{
		Id:        id,
		Content:   answer,
		Embedding: queryVector,
		Metadata:  commonModels.ChunkMetadata{Source: "semantic-cache"},
	})
	if err != nil {
		loggr.Error("Saving answer to cache failed", "error", err)
	}
	return err
}
