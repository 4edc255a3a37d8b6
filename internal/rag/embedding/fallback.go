package embedding

import (
	"context"

	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
)

var fallbackLogger = logger_i.NewLogger("Embedding Fallback")

type billingFallback struct {
	live Embedder
	mock Embedder
}

// NewBillingFallback wraps a live embedder so quota and billing failures
// downgrade to the offline embedder instead of failing the request. The
// downgrade is surfaced to operators through logs only, never to callers.
func NewBillingFallback(live Embedder, mock Embedder) Embedder {
	return &billingFallback{live: live, mock: mock}
}

func (b *billingFallback) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vector, err := b.live.GetEmbedding(ctx, query)
	if err == nil {
		return vector, nil
	}
	if commonModels.IsBillingError(err) {
		fallbackLogger.Warn("Provider billing failure, downgrading to offline embeddings", "error", err)
		return b.mock.GetEmbedding(ctx, query)
	}
	return nil, err
}
