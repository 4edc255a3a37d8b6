package rag_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/jobModel"
	"github.com/suryak02/RAG-chatbot-system/internal/rag"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/retrieval"
)

func newTestService(store *MockStore, c *MockCache, r *MockRetriever, l *MockLLM, e *MockEmbedder) rag.Service {
	return rag.NewService(store, c, r, l, e, nil)
}

func TestProcessRequest_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, c *MockCache, r *MockRetriever, l *MockLLM)
		expectedStatus jobModel.JobStatus
		expectedAnswer string
		expectedErr    string
		expectedChunks int
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, c *MockCache, r *MockRetriever, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, q, contextBlock, label string, h []string) (string, error) {
					return "final answer", nil
				}
			},
			expectedStatus: jobModel.JobStatusComplete,
			expectedAnswer: "final answer",
			expectedChunks: 1,
		},
		{
			name: "Success_Cache_Hit",
			setupMocks: func(e *MockEmbedder, c *MockCache, r *MockRetriever, l *MockLLM) {
				c.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "cached answer", true, nil
				}
				l.OnGenerate = func(ctx context.Context, q, contextBlock, label string, h []string) (string, error) {
					return "", errors.New("llm must not run on a cache hit")
				}
			},
			expectedStatus: jobModel.JobStatusComplete,
			expectedAnswer: "cached answer",
		},
		{
			name: "Success_Empty_KnowledgeBase",
			setupMocks: func(e *MockEmbedder, c *MockCache, r *MockRetriever, l *MockLLM) {
				r.OnRetrieveWithVector = func(ctx context.Context, v []float32, opts retrieval.Options) (retrieval.Result, error) {
					return retrieval.Result{}, nil
				}
			},
			expectedStatus: jobModel.JobStatusComplete,
			expectedAnswer: retrieval.EmptyKnowledgeBaseAnswer,
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder, c *MockCache, r *MockRetriever, l *MockLLM) {
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "Embedding failed",
		},
		{
			name: "Failure_Retrieval",
			setupMocks: func(e *MockEmbedder, c *MockCache, r *MockRetriever, l *MockLLM) {
				r.OnRetrieveWithVector = func(ctx context.Context, v []float32, opts retrieval.Options) (retrieval.Result, error) {
					return retrieval.Result{}, errors.New("db timeout")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "Retrieval failed",
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(e *MockEmbedder, c *MockCache, r *MockRetriever, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, q, contextBlock, label string, h []string) (string, error) {
					return "", errors.New("provider down")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "Answer generation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mCache := &MockCache{}
			mRetr := &MockRetriever{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mCache, mRetr, mLLM)

			s := newTestService(&MockStore{}, mCache, mRetr, mLLM, mEmbed)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			job := jobModel.Job{
				Id: "test-job",
				JobPayload: jobModel.JobPayload{
					Question: "test question",
				},
			}

			result := s.ProcessRequest(ctx, job, []string{})

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}

			if tt.expectedAnswer != "" && result.JobPayload.Answer != tt.expectedAnswer {
				t.Errorf("Answer got %s, want %s", result.JobPayload.Answer, tt.expectedAnswer)
			}

			if tt.expectedChunks != 0 && result.JobPayload.RetrievedChunkCount != tt.expectedChunks {
				t.Errorf("RetrievedChunkCount got %d, want %d", result.JobPayload.RetrievedChunkCount, tt.expectedChunks)
			}

			if tt.expectedErr != "" {
				if result.Error.Code != http.StatusInternalServerError {
					t.Errorf("Error Code got %d, want %d", result.Error.Code, http.StatusInternalServerError)
				}
				if result.Error.Message != tt.expectedErr {
					t.Errorf("Error Message got %q, want %q", result.Error.Message, tt.expectedErr)
				}
			}
		})
	}
}

func TestProcessRequest_NamespaceReachesRetriever(t *testing.T) {
	var gotNamespace string
	mRetr := &MockRetriever{
		OnRetrieveWithVector: func(ctx context.Context, v []float32, opts retrieval.Options) (retrieval.Result, error) {
			gotNamespace = opts.Namespace
			return DefaultResult(), nil
		},
	}
	s := newTestService(&MockStore{}, &MockCache{}, mRetr, &MockLLM{}, &MockEmbedder{})

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	job := jobModel.Job{
		Id:         "test-job",
		JobPayload: jobModel.JobPayload{Question: "q", Namespace: "acme"},
	}

	s.ProcessRequest(ctx, job, nil)
	if gotNamespace != "acme" {
		t.Errorf("retriever saw namespace %q, want acme", gotNamespace)
	}
}

func TestIngestDocument_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		fileName       string
		content        string
		setupMocks     func(e *MockEmbedder, s *MockStore)
		expectedStatus jobModel.JobStatus
		expectedErr    string
	}{
		{
			name:           "Ingestion_Success",
			fileName:       "notes.txt",
			content:        "test content for ingestion",
			setupMocks:     func(e *MockEmbedder, s *MockStore) {},
			expectedStatus: jobModel.JobStatusComplete,
		},
		{
			name:           "Failure_Unsupported_Type",
			fileName:       "data.xyz",
			content:        "binary-ish",
			setupMocks:     func(e *MockEmbedder, s *MockStore) {},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "Unsupported document type",
		},
		{
			name:     "Failure_Every_Chunk",
			fileName: "notes.txt",
			content:  "test content for ingestion",
			setupMocks: func(e *MockEmbedder, s *MockStore) {
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("quota exceeded")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedErr:    "Embedding failed for every chunk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.fileName)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("writing fixture: %v", err)
			}

			mEmbed := &MockEmbedder{}
			mStore := &MockStore{}
			tt.setupMocks(mEmbed, mStore)

			s := newTestService(mStore, &MockCache{}, &MockRetriever{}, &MockLLM{}, mEmbed)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "ingest-trace")
			job := jobModel.Job{
				Id: "ingest-job-1",
				JobPayload: jobModel.JobPayload{
					IngestFileName: tt.fileName,
					IngestURL:      path,
				},
			}

			result := s.IngestDocument(ctx, job)

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}

			if tt.expectedErr != "" && result.Error.Message != tt.expectedErr {
				t.Errorf("Error Message got %q, want %q", result.Error.Message, tt.expectedErr)
			}

			if tt.expectedErr != "" && result.Error.Retry {
				t.Error("ingestion failures must not be marked retryable, the upload is gone")
			}

			if tt.expectedStatus == jobModel.JobStatusComplete {
				stats := result.JobPayload.IngestStats
				if stats == nil || stats.ChunksSucceeded == 0 {
					t.Errorf("expected ingest stats with succeeded chunks, got %+v", stats)
				}
			}
		})
	}
}

func TestAnswer_RejectsEmptyQuestion(t *testing.T) {
	s := newTestService(&MockStore{}, &MockCache{}, &MockRetriever{}, &MockLLM{}, &MockEmbedder{})

	if _, err := s.Answer(context.Background(), "   ", ""); err == nil {
		t.Error("expected a blank question to be rejected before any work")
	}
}

func TestAnswer_EmptyStoreGetsCannedMessage(t *testing.T) {
	mRetr := &MockRetriever{
		OnRetrieveWithVector: func(ctx context.Context, v []float32, opts retrieval.Options) (retrieval.Result, error) {
			return retrieval.Result{}, nil
		},
	}
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, q, contextBlock, label string, h []string) (string, error) {
			return "", errors.New("generation must not run against an empty store")
		},
	}
	s := newTestService(&MockStore{}, &MockCache{}, mRetr, mLLM, &MockEmbedder{})

	answer, err := s.Answer(context.Background(), "anything", "")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Text != retrieval.EmptyKnowledgeBaseAnswer {
		t.Errorf("expected the canned message, got %q", answer.Text)
	}
	if answer.RetrievedChunkCount != 0 || len(answer.Sources) != 0 {
		t.Errorf("empty store must yield zero chunks and sources, got %d and %d", answer.RetrievedChunkCount, len(answer.Sources))
	}
}

func TestAnswer_FullFlow(t *testing.T) {
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, q, contextBlock, label string, h []string) (string, error) {
			if contextBlock == "" || label == "" {
				t.Errorf("generation called without context (%q) or label (%q)", contextBlock, label)
			}
			return "generated answer", nil
		},
	}
	s := newTestService(&MockStore{}, &MockCache{}, &MockRetriever{}, mLLM, &MockEmbedder{})

	answer, err := s.Answer(context.Background(), "what is this?", "")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Text != "generated answer" {
		t.Errorf("Answer text got %q", answer.Text)
	}
	if answer.RetrievedChunkCount != 1 || len(answer.Sources) != 1 {
		t.Errorf("expected 1 chunk and 1 source, got %d and %d", answer.RetrievedChunkCount, len(answer.Sources))
	}
}

func TestPreview_FiltersAndTruncates(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}

	mStore := &MockStore{
		OnGetAll: func(ctx context.Context) ([]commonModels.Chunk, error) {
			return []commonModels.Chunk{
				{Id: "a", Content: string(long), Metadata: commonModels.ChunkMetadata{Title: "A", Source: "uploaded", Namespace: "acme"}},
				{Id: "b", Content: "short", Metadata: commonModels.ChunkMetadata{Title: "B", Source: "uploaded"}},
			}, nil
		},
	}
	s := newTestService(mStore, &MockCache{}, &MockRetriever{}, &MockLLM{}, &MockEmbedder{})

	previews, err := s.Preview(context.Background(), "acme", 10)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(previews) != 1 || previews[0].Id != "a" {
		t.Fatalf("expected only the acme chunk, got %+v", previews)
	}
	if len(previews[0].ContentPreview) >= 500 {
		t.Errorf("preview content was not truncated, len %d", len(previews[0].ContentPreview))
	}
}
