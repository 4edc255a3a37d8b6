package openaiEmbedding

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/customHttpClient"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/embedding"
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
	"github.com/suryak02/RAG-chatbot-system/pkg/retry"
)

var logger = logger_i.NewLogger("openai_embedding")

type client struct {
	api    openai.Client
	model  string
	policy retry.Policy
}

// NewEmbedder wires the live OpenAI embedder. The SDK's built-in retry is
// disabled so the backoff policy here is the only one in play.
func NewEmbedder(apikey string, modelName string) (embedding.Embedder, error) {
	if apikey == "" {
		return nil, errors.New("openai embedder requires an API key")
	}
	if modelName == "" {
		modelName = config.OpenAIEmbeddingModel
	}
	return &client{
		api:   openai.NewClient(option.WithAPIKey(apikey), option.WithMaxRetries(0), option.WithHTTPClient(customHttpClient.Pooled())),
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
		resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input:      openai.EmbeddingNewParamsInputUnion{OfString: openai.String(query)},
			Model:      openai.EmbeddingModel(c.model),
			Dimensions: openai.Int(int64(config.EmbeddingDimension())),
		})
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return errors.New("empty embedding response")
		}
		vector = toFloat32(resp.Data[0].Embedding)
		return nil
	}

	if err := retry.Do(ctx, c.policy, classifyError, op); err != nil {
		retryable, _ := classifyError(err)
		log.Error("Error getting Embedding from OpenAI", "error", err.Error())
		return nil, &commonModels.ProviderError{
			Provider:   "openai-embedding",
			StatusCode: statusCode(err),
			Retryable:  retryable,
			Err:        err,
		}
	}
	return vector, nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

// classifyError treats 429 and 5xx as transient, honoring the Retry-After
// header when the provider sends one. Any other API status is permanent.
// Transport-level failures with no API status are worth retrying.
func classifyError(err error) (bool, time.Duration) {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500 {
			return true, retryAfterHint(apiErr)
		}
		return false, 0
	}
	return true, 0
}

func retryAfterHint(apiErr *openai.Error) time.Duration {
	if apiErr.Response == nil {
		return 0
	}
	header := apiErr.Response.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return 0
}

func statusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
