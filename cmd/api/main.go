// @title           RAG Knowledge Base API
// @version         1.0
// @description     Asynchronous chat with retrieval-augmented answers, document ingestion and knowledge base inspection.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email   suryak.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/data/store"
	jobmodel "github.com/suryak02/RAG-chatbot-system/internal/domain/jobModel"
	"github.com/suryak02/RAG-chatbot-system/internal/handlers"
	"github.com/suryak02/RAG-chatbot-system/internal/job"
	"github.com/suryak02/RAG-chatbot-system/internal/rag"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/cache"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/embedding"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/embedding/googleEmbedding"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/embedding/mockEmbedding"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/embedding/openaiEmbedding"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/ingest"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/llm"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/llm/gemini"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/llm/mockLLM"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/llm/openaiChat"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/retrieval"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/vectorDB"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/vectorDB/memoryDB"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/vectorDB/qdrantDB"
	"github.com/suryak02/RAG-chatbot-system/internal/server"
	"github.com/suryak02/RAG-chatbot-system/internal/worker"
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	_ = godotenv.Load()

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          store.GetRedisJobStore(serviceContext),
		MessageStore:      store.GetRedisMessageStore(serviceContext),
	}
	logger.Info("Starting job service")

	if serviceConfig.JobStore == nil || serviceConfig.MessageStore == nil {
		logger.Error("Redis stores are offline")
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
			return
		}
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.MessageStore = store.InitMessageStore()
	}
	service := job.InitJobService(serviceConfig)

	embedder, err := buildEmbedder(serviceContext)
	if err != nil {
		logger.Error("Embedding provider failed to initialize", "provider", config.EmbeddingProvider(), "err", err)
		return
	}

	llmProvider, transcriber, err := buildLLM(serviceContext)
	if err != nil {
		logger.Error("LLM provider failed to initialize", "provider", config.LLMProvider(), "err", err)
		return
	}

	chunkStore, answerStore, err := buildVectorStores(serviceContext)
	if err != nil {
		logger.Error("Vector store failed to initialize", "backend", config.VectorBackend(), "err", err)
		return
	}

	retriever := retrieval.NewRetriever(embedder, chunkStore, config.MockMode())
	answerCache := cache.NewSemanticCache(answerStore)
	ragService := rag.NewService(chunkStore, answerCache, retriever, llmProvider, embedder, transcriber)

	handlers.InitJobHandler(service)
	handlers.InitKBHandler(ragService)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	closeVectorStores(logger, chunkStore, answerStore)
	logger.Info("Server stopped")
}

func buildEmbedder(ctx context.Context) (embedding.Embedder, error) {
	switch config.EmbeddingProvider() {
	case config.ProviderMock:
		return mockEmbedding.NewEmbedder(config.EmbeddingDimension()), nil

	case config.ProviderGoogle:
		live, err := googleEmbedding.NewEmbedder(ctx, config.EmbeddingModelName(), config.GoogleAPIKey())
		if err != nil {
			return nil, err
		}
		return withBillingFallback(live), nil

	default:
		live, err := openaiEmbedding.NewEmbedder(config.OpenAIAPIKey(), config.EmbeddingModelName())
		if err != nil {
			return nil, err
		}
		return withBillingFallback(live), nil
	}
}

func withBillingFallback(live embedding.Embedder) embedding.Embedder {
	if !config.FallbackToMockOnBillingError() {
		return live
	}
	return embedding.NewBillingFallback(live, mockEmbedding.NewEmbedder(config.EmbeddingDimension()))
}

// buildLLM also hands back the transcriber when the provider can do audio.
// Only the OpenAI client transcribes, everywhere else audio uploads are
// rejected per file during ingestion.
func buildLLM(ctx context.Context) (llm.Provider, ingest.Transcriber, error) {
	switch config.LLMProvider() {
	case config.ProviderMock:
		return mockLLM.NewProvider(), nil, nil

	case config.ProviderGoogle:
		provider, err := gemini.NewProvider(ctx, config.ChatModelName(), config.GoogleAPIKey())
		return provider, nil, err

	default:
		client, err := openaiChat.NewClient(config.OpenAIAPIKey(), config.ChatModelName())
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	}
}

// buildVectorStores returns the chunk store and the semantic answer cache
// store. Qdrant gets one collection per concern so clearing the knowledge
// base never touches cached answers.
func buildVectorStores(ctx context.Context) (vectorDB.Store, vectorDB.Store, error) {
	if config.VectorBackend() == config.VectorBackendQdrant {
		chunks, err := qdrantDB.NewVectorStore(ctx, config.VectorCollectionName)
		if err != nil {
			return nil, nil, err
		}
		answers, err := qdrantDB.NewVectorStore(ctx, config.CacheCollectionName)
		if err != nil {
			_ = chunks.Close()
			return nil, nil, err
		}
		return chunks, answers, nil
	}
	return memoryDB.NewVectorStore(), memoryDB.NewVectorStore(), nil
}

func closeVectorStores(logger *logger_i.Logger, stores ...vectorDB.Store) {
	for _, s := range stores {
		if closer, ok := s.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Error closing vector store", "err", err)
			}
		}
	}
}
