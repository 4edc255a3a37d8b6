// MCP server exposing the knowledge base to AI assistants. Speaks JSON-RPC
// over stdio by default (Claude Desktop style), or HTTP with -http for the
// MCP Inspector.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
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
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
)

const serverVersion = "1.0.0"

var httpAddr string

func main() {
	_ = godotenv.Load()

	logger_i.InitStderr()
	logger := logger_i.NewLogger("mcp")

	flag.StringVar(&httpAddr, "http", "", "serve MCP over HTTP on this address instead of stdio")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	core, err := buildCore(ctx)
	if err != nil {
		logger.Error("Knowledge base failed to initialize", "err", err)
		os.Exit(1)
	}
	defer core.close(logger)

	srv := newKBServer(core.service, core.retriever)

	if httpAddr != "" {
		logger.Info("MCP server listening", "addr", httpAddr)
		err = srv.runHTTP(ctx, httpAddr)
	} else {
		err = srv.run(ctx)
	}
	if err != nil {
		logger.Error("MCP server stopped", "err", err)
		os.Exit(1)
	}
}

// kbServer adapts the RAG core to MCP tools.
type kbServer struct {
	service   rag.Service
	retriever retrieval.Retriever
	server    *mcp.Server
}

func newKBServer(service rag.Service, retriever retrieval.Retriever) *kbServer {
	s := &kbServer{
		service:   service,
		retriever: retriever,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "rag-knowledge-base",
			Version: serverVersion,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *kbServer) run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *kbServer) runHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type searchInput struct {
	Question   string `json:"question" jsonschema:"the question to search the knowledge base with"`
	Namespace  string `json:"namespace,omitempty" jsonschema:"optional namespace to scope the search"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of chunks to return (default 5)"`
}

type searchResult struct {
	Id      string `json:"id"`
	Title   string `json:"title"`
	Section string `json:"section,omitempty"`
	Source  string `json:"source"`
	Content string `json:"content"`
}

type searchOutput struct {
	Results []searchResult `json:"results"`
	Count   int            `json:"count"`
}

type askInput struct {
	Question  string `json:"question" jsonschema:"the question to answer from the knowledge base"`
	Namespace string `json:"namespace,omitempty" jsonschema:"optional namespace to scope retrieval"`
}

type askOutput struct {
	Answer              string                   `json:"answer"`
	Sources             []commonModels.SourceRef `json:"sources"`
	RetrievedChunkCount int                      `json:"retrieved_chunk_count"`
	ElapsedMs           int64                    `json:"elapsed_ms"`
}

type statusInput struct {
	Namespace string `json:"namespace,omitempty" jsonschema:"optional namespace to count"`
}

type statusOutput struct {
	ChunkCount        int    `json:"chunk_count"`
	VectorBackend     string `json:"vector_backend"`
	EmbeddingProvider string `json:"embedding_provider"`
	LLMProvider       string `json:"llm_provider"`
}

func (s *kbServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "kb_search",
		Description: "Retrieve the most relevant knowledge base chunks for a question, without generating an answer",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "kb_ask",
		Description: "Answer a question from the knowledge base with cited sources",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "kb_status",
		Description: "Report how many chunks are stored and which providers back the knowledge base",
	}, s.handleStatus)
}

func (s *kbServer) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input searchInput) (*mcp.CallToolResult, searchOutput, error) {
	result, err := s.retriever.Retrieve(ctx, input.Question, retrieval.Options{
		Namespace:  input.Namespace,
		MaxResults: input.MaxResults,
	})
	if err != nil {
		return nil, searchOutput{}, err
	}

	output := searchOutput{
		Results: make([]searchResult, len(result.Chunks)),
		Count:   len(result.Chunks),
	}
	for i, chunk := range result.Chunks {
		output.Results[i] = searchResult{
			Id:      chunk.Id,
			Title:   chunk.Metadata.Title,
			Section: chunk.Metadata.Section,
			Source:  chunk.Metadata.Source,
			Content: chunk.Content,
		}
	}
	return nil, output, nil
}

func (s *kbServer) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input askInput) (*mcp.CallToolResult, askOutput, error) {
	answer, err := s.service.Answer(ctx, input.Question, input.Namespace)
	if err != nil {
		return nil, askOutput{}, err
	}
	return nil, askOutput{
		Answer:              answer.Text,
		Sources:             answer.Sources,
		RetrievedChunkCount: answer.RetrievedChunkCount,
		ElapsedMs:           answer.ElapsedMs,
	}, nil
}

func (s *kbServer) handleStatus(ctx context.Context, _ *mcp.CallToolRequest, input statusInput) (*mcp.CallToolResult, statusOutput, error) {
	count, err := s.service.Count(ctx, input.Namespace)
	if err != nil {
		return nil, statusOutput{}, err
	}
	return nil, statusOutput{
		ChunkCount:        count,
		VectorBackend:     config.VectorBackend(),
		EmbeddingProvider: config.EmbeddingProvider(),
		LLMProvider:       config.LLMProvider(),
	}, nil
}

// ragCore is the wired retrieval stack shared by every tool.
type ragCore struct {
	service   rag.Service
	retriever retrieval.Retriever
	stores    []vectorDB.Store
}

func (c *ragCore) close(logger *logger_i.Logger) {
	for _, s := range c.stores {
		if closer, ok := s.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Error closing vector store", "err", err)
			}
		}
	}
}

// buildCore mirrors the API server's provider selection, minus the job and
// chat plumbing the MCP tools never touch.
func buildCore(ctx context.Context) (*ragCore, error) {
	var embedder embedding.Embedder
	var err error
	switch config.EmbeddingProvider() {
	case config.ProviderMock:
		embedder = mockEmbedding.NewEmbedder(config.EmbeddingDimension())
	case config.ProviderGoogle:
		embedder, err = googleEmbedding.NewEmbedder(ctx, config.EmbeddingModelName(), config.GoogleAPIKey())
	default:
		embedder, err = openaiEmbedding.NewEmbedder(config.OpenAIAPIKey(), config.EmbeddingModelName())
	}
	if err != nil {
		return nil, err
	}
	if config.FallbackToMockOnBillingError() && config.EmbeddingProvider() != config.ProviderMock {
		embedder = embedding.NewBillingFallback(embedder, mockEmbedding.NewEmbedder(config.EmbeddingDimension()))
	}

	var llmProvider llm.Provider
	var transcriber ingest.Transcriber
	switch config.LLMProvider() {
	case config.ProviderMock:
		llmProvider = mockLLM.NewProvider()
	case config.ProviderGoogle:
		llmProvider, err = gemini.NewProvider(ctx, config.ChatModelName(), config.GoogleAPIKey())
	default:
		var client *openaiChat.Client
		client, err = openaiChat.NewClient(config.OpenAIAPIKey(), config.ChatModelName())
		if err == nil {
			llmProvider = client
			transcriber = client
		}
	}
	if err != nil {
		return nil, err
	}

	var chunkStore, answerStore vectorDB.Store
	if config.VectorBackend() == config.VectorBackendQdrant {
		qdrantChunks, err := qdrantDB.NewVectorStore(ctx, config.VectorCollectionName)
		if err != nil {
			return nil, err
		}
		qdrantAnswers, err := qdrantDB.NewVectorStore(ctx, config.CacheCollectionName)
		if err != nil {
			_ = qdrantChunks.Close()
			return nil, err
		}
		chunkStore, answerStore = qdrantChunks, qdrantAnswers
	} else {
		chunkStore, answerStore = memoryDB.NewVectorStore(), memoryDB.NewVectorStore()
	}

	retriever := retrieval.NewRetriever(embedder, chunkStore, config.MockMode())
	service := rag.NewService(chunkStore, cache.NewSemanticCache(answerStore), retriever, llmProvider, embedder, transcriber)

	return &ragCore{
		service:   service,
		retriever: retriever,
		stores:    []vectorDB.Store{chunkStore, answerStore},
	}, nil
}
