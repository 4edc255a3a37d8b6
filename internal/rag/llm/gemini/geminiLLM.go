package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/llm"
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
	"github.com/suryak02/RAG-chatbot-system/pkg/retry"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger = logger_i.NewLogger("llm_gemini")

type llmClient struct {
	client    *genai.Client
	modelName string
	policy    retry.Policy
}

// NewProvider wires Gemini as an alternative completion provider, selected
// with LLM_PROVIDER=google.
func NewProvider(ctx context.Context, modelName string, apikey string) (llm.Provider, error) {
	if apikey == "" {
		return nil, errors.New("gemini requires an API key")
	}
	if modelName == "" {
		modelName = config.GeminiModelName
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	logger.Info("Gemini client created", "model", modelName)

	return &llmClient{
		client:    c,
		modelName: modelName,
		policy: retry.Policy{
			MaxAttempts: config.RetryMaxAttempts,
			BaseDelay:   config.RetryBaseDelay,
			MaxDelay:    config.RetryMaxDelay,
			MaxJitter:   config.RetryMaxJitter,
		},
	}, nil
}

func (c *llmClient) Generate(ctx context.Context, question string, contextBlock string, domainLabel string, messageHistory []string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: llm.BuildSystemPrompt(domainLabel, config.AllowGeneralKnowledge())},
		},
	}
	userPrompt := llm.BuildUserPrompt(question, contextBlock, messageHistory)

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Temperature:       genai.Ptr[float32](config.ModelTemperature),
	}

	var answer string
	op := func(ctx context.Context) error {
		result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(userPrompt), contentConfig)
		if err != nil {
			return err
		}
		answer = result.Text()
		if answer == "" {
			return errors.New("empty completion response")
		}
		return nil
	}

	if err := retry.Do(ctx, c.policy, classifyError, op); err != nil {
		retryable, _ := classifyError(err)
		log.Error("Error getting completion from Gemini", "error", err.Error())
		return "", &commonModels.ProviderError{
			Provider:   "gemini",
			StatusCode: statusCodeOf(err),
			Retryable:  retryable,
			Err:        err,
		}
	}
	return answer, nil
}

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
