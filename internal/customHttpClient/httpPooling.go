package customHttpClient

import (
	"net/http"

	"github.com/suryak02/RAG-chatbot-system/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

var pooledClient = &http.Client{Transport: customTransport}

// Pooled is the shared HTTP client the OpenAI embedder and chat providers
// run through, so repeated calls reuse connections instead of redialing.
// Qdrant rides its own gRPC channel and the genai SDK pools internally.
func Pooled() *http.Client {
	return pooledClient
}
