package rag

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/jobModel"
	"github.com/suryak02/RAG-chatbot-system/internal/metrics"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/retrieval"
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans string, result retrieval.Result, elapsed time.Duration) jobModel.Job {
	job.JobPayload.Answer = ans
	job.JobPayload.Sources = result.Sources
	job.JobPayload.RetrievedChunkCount = len(result.Chunks)
	job.JobPayload.ElapsedMs = elapsed.Milliseconds()
	job.CurrentStep = jobModel.Complete
	job.Status = jobModel.JobStatusComplete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) ([]float32, error) {
	*job = logOutput(*job, jobModel.EmbeddingAPICall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, job.JobPayload.Question)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, queryVector []float32) (string, bool) {
	*job = logOutput(*job, jobModel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, _ := s.answerCache.GetCachedAnswer(ctx, queryVector)
	metrics.CaptureCacheLookup(found)
	return ans, found
}

func (s *service) executeRetrievalStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, queryVector []float32) (retrieval.Result, error) {
	*job = logOutput(*job, jobModel.RetrievalCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("retrieval", time.Since(start)) }()

	return s.retriever.RetrieveWithVector(ctx, queryVector, retrieval.Options{
		Namespace: job.JobPayload.Namespace,
	})
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, result retrieval.Result, history []string) (string, error) {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, job.JobPayload.Question, result.ContextBlock, result.DomainLabel, history)
}

func buildPreviews(chunks []commonModels.Chunk, namespace string, limit int) []commonModels.ChunkPreview {
	ns := strings.TrimSpace(namespace)
	if limit <= 0 {
		limit = config.DefaultPreviewLimit
	}

	previews := make([]commonModels.ChunkPreview, 0, limit)
	for _, c := range chunks {
		if ns != "" && c.Metadata.Namespace != ns {
			continue
		}
		previews = append(previews, commonModels.ChunkPreview{
			Id:             c.Id,
			Title:          c.Metadata.Title,
			Source:         c.Metadata.Source,
			ContentPreview: truncateContent(c.Content, config.PreviewContentLength),
		})
		if len(previews) == limit {
			break
		}
	}
	return previews
}

func truncateContent(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
