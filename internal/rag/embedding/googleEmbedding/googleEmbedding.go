package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/embedding"
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
	"github.com/suryak02/RAG-chatbot-system/pkg/retry"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger = logger_i.NewLogger("google_embedding")
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi  *genai.Client
	model  string
	policy retry.Policy
}

// NewEmbedder wires the Gemini embedding model as an alternative live
// embedder, selected with EMBEDDING_PROVIDER=google.
func NewEmbedder(ctx context.Context, modelName string, apikey string) (embedding.Embedder, error) {
	if apikey == "" {
		return nil, errors.New("google embedder requires an API key")
	}
	if modelName == "" {
		modelName = config.GoogleEmbeddingModel
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		return nil, fmt.Errorf("creating google embedding client: %w", err)
	}
	logger.Debug("Google Embedding model name: " + modelName)
	logger.Info("Google Embedding client created")

	return &client{
		genAi: c,
		model: modelName,
		policy: retry.Policy{
			MaxAttempts: config.RetryMaxAttempts,
			BaseDelay:   config.RetryBaseDelay,
			MaxDelay:    config.RetryMaxDelay,
			MaxJitter:   config.RetryMaxJitter,
		},
	}, nil
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	var vector []float32
	op := func(ctx context.Context) error {
		result, err := c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(query),
			&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_DOCUMENT"})
		if err != nil {
			return err
		}
		if len(result.Embeddings) == 0 {
			return errors.New("empty embedding response")
		}
		vector = result.Embeddings[0].Values
		return nil
	}

	if err := retry.Do(ctx, c.policy, classifyError, op); err != nil {
		retryable, _ := classifyError(err)
		log.Error("Error getting Embeddings from Google", "error", err.Error())
		return nil, &commonModels.ProviderError{
			Provider:   "google-embedding",
			StatusCode: statusCodeOf(err),
			Retryable:  retryable,
			Err:        err,
		}
	}
	return vector, nil
}

// classifyError: Gemini signals rate limiting either as an HTTP 429 on the
// REST surface or as grpc ResourceExhausted.
func classifyError(err error) (bool, time.Duration) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500, 0
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.Internal, codes.DeadlineExceeded:
			return true, 0
		}
	}
	return false, 0
}

func statusCodeOf(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
