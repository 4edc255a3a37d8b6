package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to an internal in-memory store
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5

	//semantic answer cache
	CacheSimilarityCutoff float32 = 0.97

	//retrieval policy defaults; the fallback ladder is policy, not contract
	DefaultMaxResults           int     = 5
	DefaultSimilarityThreshold  float32 = 0.7
	FallbackSimilarityThreshold float32 = 0.3

	//chunking
	ChunkSize    = 1000
	ChunkOverlap = 200

	//store inspection
	PreviewContentLength = 160
	DefaultPreviewLimit  = 10

	EmbeddingOutputDimensionality int32 = 1536
	VectorCollectionName                = "rag-chunks"
	CacheCollectionName                 = "semantic-cache"

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB backends
	VectorBackendMemory = "memory"
	VectorBackendQdrant = "qdrant"

	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = ""
	QdrantPort              = 6333 //http
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1
	QdrantKeepAliveTimeout  = 30 * time.Second

	//providers
	ProviderOpenAI = "openai"
	ProviderGoogle = "google"
	ProviderMock   = "mock"

	OpenAIEmbeddingModel = "text-embedding-3-small"
	OpenAIChatModel      = "gpt-4o-mini"
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"

	//provider retry policy
	RetryMaxAttempts = 5
	RetryBaseDelay   = 500 * time.Millisecond
	RetryMaxDelay    = 8000 * time.Millisecond
	RetryMaxJitter   = 200 * time.Millisecond

	ModelTemperature float32 = 0.7

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//auth
	NoAuthBypass = true
	AuthToken    = ""

	//redis
	redisHost     = "127.0.0.1"
	redisPort     = "6379"
	RedisAddr     = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis has 16 DB we can use
	RedisJobStore     = 0
	RedisMessageStore = 1

	//redis timeouts
	RedisJobStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL = 24 * time.Hour
)

// env-backed flags; consts above are the fallbacks

func MockMode() bool {
	return envBool("MOCK_MODE", false)
}

func FallbackToMockOnBillingError() bool {
	return envBool("FALLBACK_TO_MOCK_ON_BILLING", false)
}

func AllowGeneralKnowledge() bool {
	return envBool("ALLOW_GENERAL_KNOWLEDGE", false)
}

func EmbeddingProvider() string {
	if MockMode() {
		return ProviderMock
	}
	return envString("EMBEDDING_PROVIDER", ProviderOpenAI)
}

func LLMProvider() string {
	if MockMode() {
		return ProviderMock
	}
	return envString("LLM_PROVIDER", ProviderOpenAI)
}

func EmbeddingModelName() string {
	if EmbeddingProvider() == ProviderGoogle {
		return envString("EMBEDDING_MODEL", GoogleEmbeddingModel)
	}
	return envString("EMBEDDING_MODEL", OpenAIEmbeddingModel)
}

func ChatModelName() string {
	if LLMProvider() == ProviderGoogle {
		return envString("CHAT_MODEL", GeminiModelName)
	}
	return envString("CHAT_MODEL", OpenAIChatModel)
}

func VectorBackend() string {
	return envString("VECTOR_BACKEND", VectorBackendMemory)
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func GoogleAPIKey() string {
	return os.Getenv("GOOGLE_API_KEY")
}

func EmbeddingDimension() int {
	if v, err := strconv.Atoi(os.Getenv("EMBEDDING_DIMENSION")); err == nil && v > 0 {
		return v
	}
	return int(EmbeddingOutputDimensionality)
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
