package openaiChat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/customHttpClient"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/llm"
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
	"github.com/suryak02/RAG-chatbot-system/pkg/retry"
)

var logger = logger_i.NewLogger("llm_openai")

// Client is the live OpenAI completion provider. It also transcribes audio
// uploads, so the composition root hands the same instance to the ingestion
// pipeline as its transcriber.
type Client struct {
	api    openai.Client
	model  string
	policy retry.Policy
}

func NewClient(apikey string, modelName string) (*Client, error) {
	if apikey == "" {
		return nil, errors.New("openai chat requires an API key")
	}
	if modelName == "" {
		modelName = config.OpenAIChatModel
	}
	return &Client{
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

func (c *Client) Generate(ctx context.Context, question string, contextBlock string, domainLabel string, messageHistory []string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	system := llm.BuildSystemPrompt(domainLabel, config.AllowGeneralKnowledge())
	user := llm.BuildUserPrompt(question, contextBlock, messageHistory)

	var answer string
	op := func(ctx context.Context) error {
		resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system),
				openai.UserMessage(user),
			},
			Model:       openai.ChatModel(c.model),
			Temperature: openai.Float(float64(config.ModelTemperature)),
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty completion response")
		}
		answer = resp.Choices[0].Message.Content
		return nil
	}

	if err := retry.Do(ctx, c.policy, classifyError, op); err != nil {
		retryable, _ := classifyError(err)
		log.Error("Error getting completion from OpenAI", "error", err.Error())
		return "", &commonModels.ProviderError{
			Provider:   "openai-chat",
			StatusCode: statusCode(err),
			Retryable:  retryable,
			Err:        err,
		}
	}
	return answer, nil
}

// Transcribe turns an uploaded audio file into text via Whisper.
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening audio file: %w", err)
	}
	defer file.Close()

	resp, err := c.api.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  file,
		Model: openai.AudioModelWhisper1,
	})
	if err != nil {
		retryable, _ := classifyError(err)
		return "", &commonModels.ProviderError{
			Provider:   "openai-transcription",
			StatusCode: statusCode(err),
			Retryable:  retryable,
			Err:        err,
		}
	}
	return resp.Text, nil
}

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
