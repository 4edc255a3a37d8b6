package commonModels

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Source tags recognized by the retrieval policy. "uploaded" always wins over
// bundled corpora when both exist in the store.
const (
	SourceUploaded      = "uploaded"
	SourceOpenAIDocs    = "openai-docs"
	SourceUniversalDocs = "universal-docs"
)

// ChunkMetadata describes where a chunk came from. Optional fields stay empty.
type ChunkMetadata struct {
	Source    string `json:"source"`
	Title     string `json:"title"`
	URL       string `json:"url,omitempty"`
	Section   string `json:"section,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// Chunk is the atomic retrievable unit: a span of document text plus its
// embedding. Chunks are immutable once inserted into a store.
type Chunk struct {
	Id        string        `json:"id"`
	Content   string        `json:"content"`
	Embedding []float32     `json:"embedding,omitempty"`
	Metadata  ChunkMetadata `json:"metadata"`
}

// Section is one titled slice of a document, Level = heading depth 1-6.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Level   int    `json:"level"`
}

// Document only lives long enough to be chunked; it is never persisted.
type Document struct {
	Id       string    `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	URL      string    `json:"url,omitempty"`
	Sections []Section `json:"sections,omitempty"`
}

// SourceRef is one deduplicated citation handed back with an answer.
type SourceRef struct {
	Title   string `json:"title"`
	Section string `json:"section"`
	URL     string `json:"url,omitempty"`
}

// Answer is the result of one query against the knowledge base.
type Answer struct {
	Text                string      `json:"answer"`
	Sources             []SourceRef `json:"sources"`
	RetrievedChunkCount int         `json:"retrieved_chunk_count"`
	ElapsedMs           int64       `json:"elapsed_ms"`
}

// IngestStats aggregates per-batch outcomes so one bad file or chunk never
// fails a whole upload.
type IngestStats struct {
	FilesProcessed  int      `json:"files_processed"`
	ChunksTotal     int      `json:"chunks_total"`
	ChunksSucceeded int      `json:"chunks_succeeded"`
	ChunksFailed    int      `json:"chunks_failed"`
	Errors          []string `json:"errors,omitempty"`
}

type DocType string

var (
	PDF   DocType = "PDF"
	DOCX  DocType = "DOCX"
	MD    DocType = "MD"
	TXT   DocType = "TXT"
	AUDIO DocType = "AUDIO"
	ERR   DocType = "ERROR"
)

// ProviderError is returned by embedding and completion gateways once the
// retry ceiling is exhausted, or immediately for non-transient failures.
type ProviderError struct {
	Provider   string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s provider error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsBillingError reports whether an error looks like a provider quota or
// billing failure: HTTP 402/403, or a quota/billing marker in the message.
// Used by the optional downgrade-to-mock policy.
func IsBillingError(err error) bool {
	if err == nil {
		return false
	}
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		if pErr.StatusCode == http.StatusPaymentRequired || pErr.StatusCode == http.StatusForbidden {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "insufficient_quota") || strings.Contains(msg, "billing")
}

// ChunkPreview is the trimmed view returned by the store inspection endpoint.
type ChunkPreview struct {
	Id             string `json:"id"`
	Title          string `json:"title"`
	Source         string `json:"source"`
	ContentPreview string `json:"content_preview"`
}
