package rag

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/suryak02/RAG-chatbot-system/internal/adapter/utils"
	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/jobModel"
	"github.com/suryak02/RAG-chatbot-system/internal/metrics"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/cache"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/embedding"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/ingest"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/llm"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/retrieval"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/vectorDB"
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - Real work happens down low bruh
  - This is the PUBLIC contract.
  - It defines the "behavior" (what the worker can do).
  - We expose this to keep the worker decoupled from our specific logic.

2. service (Private Struct):
  - down low stuff
  - This is the PRIVATE implementation.
  - It holds the "state" (store, cache and provider clients).
  - It is lowercase to prevent external packages from accessing our
    internal dependencies (vectorDB, llmProvider) directly.

3. Pointer Receiver (*service):
  - By defining methods on (*service), the struct IMPLICITLY satisfies
    the Service interface.
  - if it quacks like a duck, -it's a duck (Duck Typing)

4. Dependency Injection (NewService):
  - This constructor links the private struct to the public interface.
  - It allows us to swap real DBs for mocks during testing without
    changing the worker's code.
*/

// Service is everything the workers and handlers can ask of the pipeline.
// Job-based methods run inside the worker pool; the rest are synchronous.
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job

	Answer(ctx context.Context, question, namespace string) (commonModels.Answer, error)
	IngestText(ctx context.Context, title, rawText, sourceURL, sourceLabel, namespace string) (commonModels.IngestStats, error)
	Count(ctx context.Context, namespace string) (int, error)
	Preview(ctx context.Context, namespace string, limit int) ([]commonModels.ChunkPreview, error)
	ClearNamespace(ctx context.Context, namespace string) error
	Clear(ctx context.Context) error
}

type service struct {
	store       vectorDB.Store
	answerCache cache.AnswerCache
	retriever   retrieval.Retriever
	llmProvider llm.Provider
	embedder    embedding.Embedder
	transcriber ingest.Transcriber
	logger      *logger_i.Logger
}

// NewService constructor. The transcriber may be nil, in which case audio
// uploads are rejected per file.
func NewService(store vectorDB.Store, answerCache cache.AnswerCache, retriever retrieval.Retriever, llmProvider llm.Provider, embedder embedding.Embedder, transcriber ingest.Transcriber) Service {
	return &service{
		store:       store,
		answerCache: answerCache,
		retriever:   retriever,
		llmProvider: llmProvider,
		embedder:    embedder,
		transcriber: transcriber,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job, messageHistory []string) jobModel.Job {
	start := time.Now()
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	jobt.CurrentStep = jobModel.RAGCall

	// Embedding
	queryVector, err := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "Embedding failed", true)
	}

	// Cache Check
	cachedAnswer, found := s.executeCacheCheckStep(processContext, inMethodLogger, &jobt, queryVector)
	if found {
		return returnOutput(jobt, cachedAnswer, retrieval.Result{}, time.Since(start))
	}

	// Retrieval
	result, err := s.executeRetrievalStep(processContext, inMethodLogger, &jobt, queryVector)
	if err != nil {
		return s.jobError(jobt, err, "Retrieval failed", true)
	}
	if result.Empty() {
		return returnOutput(jobt, retrieval.EmptyKnowledgeBaseAnswer, result, time.Since(start))
	}

	// LLM Generation
	answer, err := s.executeLLMStep(processContext, inMethodLogger, &jobt, result, messageHistory)
	if err != nil {
		return s.jobError(jobt, err, "Answer generation failed", true)
	}

	s.saveAnswerToCache(ctx, queryVector, answer)

	return returnOutput(jobt, answer, result, time.Since(start))
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Document_ingestion", time.Since(start)) }()

	j := ingest.ProcessDocumentIngestion(ctx, job, s.embedder, s.store, s.transcriber)
	if stats := j.JobPayload.IngestStats; stats != nil {
		metrics.CaptureIngestStats(stats.ChunksSucceeded, stats.ChunksFailed)
	}
	if j.Status != jobModel.JobStatusComplete {
		// The uploaded temp file is gone either way, so a retry of the
		// same job cannot succeed.
		return s.jobError(j, errors.New(j.Error.Message), j.Error.Message, false)
	}
	return j
}

// Answer runs one synchronous question against the knowledge base.
func (s *service) Answer(ctx context.Context, question, namespace string) (commonModels.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return commonModels.Answer{}, errors.New("question must not be empty")
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("answer_query", time.Since(start)) }()
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	queryVector, err := s.embedder.GetEmbedding(ctx, question)
	if err != nil {
		return commonModels.Answer{}, err
	}

	if cached, found, _ := s.answerCache.GetCachedAnswer(ctx, queryVector); found {
		return commonModels.Answer{
			Text:      cached,
			Sources:   []commonModels.SourceRef{},
			ElapsedMs: time.Since(start).Milliseconds(),
		}, nil
	}

	result, err := s.retriever.RetrieveWithVector(ctx, queryVector, retrieval.Options{Namespace: namespace})
	if err != nil {
		return commonModels.Answer{}, err
	}
	if result.Empty() {
		log.Debug("Nothing retrievable, answering with the canned message")
		return commonModels.Answer{
			Text:      retrieval.EmptyKnowledgeBaseAnswer,
			Sources:   []commonModels.SourceRef{},
			ElapsedMs: time.Since(start).Milliseconds(),
		}, nil
	}

	answer, err := s.llmProvider.Generate(ctx, question, result.ContextBlock, result.DomainLabel, nil)
	if err != nil {
		return commonModels.Answer{}, err
	}

	s.saveAnswerToCache(ctx, queryVector, answer)

	return commonModels.Answer{
		Text:                answer,
		Sources:             result.Sources,
		RetrievedChunkCount: len(result.Chunks),
		ElapsedMs:           time.Since(start).Milliseconds(),
	}, nil
}

// IngestText runs the write path over already-extracted text, for callers
// that bypass file upload.
func (s *service) IngestText(ctx context.Context, title, rawText, sourceURL, sourceLabel, namespace string) (commonModels.IngestStats, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("text_ingestion", time.Since(start)) }()

	if strings.TrimSpace(rawText) == "" {
		return commonModels.IngestStats{
			FilesProcessed: 1,
			Errors:         []string{"document contains no usable text"},
		}, nil
	}

	doc := ingest.BuildDocument(title, rawText, sourceURL)
	chunks := ingest.PrepareChunks(doc, sourceLabel, namespace)
	stats := ingest.EmbedAndStore(ctx, chunks, s.embedder, s.store)
	stats.FilesProcessed = 1
	metrics.CaptureIngestStats(stats.ChunksSucceeded, stats.ChunksFailed)
	return stats, nil
}

func (s *service) Count(ctx context.Context, namespace string) (int, error) {
	return s.store.Count(ctx, namespace)
}

func (s *service) Preview(ctx context.Context, namespace string, limit int) ([]commonModels.ChunkPreview, error) {
	chunks, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return buildPreviews(chunks, namespace, limit), nil
}

func (s *service) ClearNamespace(ctx context.Context, namespace string) error {
	return s.store.ClearNamespace(ctx, namespace)
}

func (s *service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// saveAnswerToCache writes in the background, detached from the request
// lifetime so a finished request cannot cancel the save mid-flight.
func (s *service) saveAnswerToCache(ctx context.Context, queryVector []float32, answer string) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	go func() {
		defer cancel()
		if err := s.answerCache.SaveToCache(saveCtx, utils.GetNewUUID(), queryVector, answer); err != nil {
			s.logger.Error("Failed to save to cache")
		}
	}()
}
