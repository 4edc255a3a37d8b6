package rag_test

import (
	"context"

	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/retrieval"
)

// MockStore implements vectorDB.Store
type MockStore struct {
	// Control fields to simulate different behaviors
	OnAdd              func(ctx context.Context, chunk commonModels.Chunk) error
	OnAddMany          func(ctx context.Context, chunks []commonModels.Chunk) error
	OnSimilaritySearch func(ctx context.Context, queryVector []float32, k int, threshold float32, namespace string) ([]commonModels.Chunk, error)
	OnClear            func(ctx context.Context) error
	OnClearNamespace   func(ctx context.Context, namespace string) error
	OnGetAll           func(ctx context.Context) ([]commonModels.Chunk, error)
	OnCount            func(ctx context.Context, namespace string) (int, error)
}

func (m *MockStore) Add(ctx context.Context, chunk commonModels.Chunk) error {
	if m.OnAdd != nil {
		return m.OnAdd(ctx, chunk)
	}
	return nil
}

func (m *MockStore) AddMany(ctx context.Context, chunks []commonModels.Chunk) error {
	if m.OnAddMany != nil {
		return m.OnAddMany(ctx, chunks)
	}
	return nil
}

func (m *MockStore) SimilaritySearch(ctx context.Context, queryVector []float32, k int, threshold float32, namespace string) ([]commonModels.Chunk, error) {
	if m.OnSimilaritySearch != nil {
		return m.OnSimilaritySearch(ctx, queryVector, k, threshold, namespace)
	}
	return nil, nil
}

func (m *MockStore) Clear(ctx context.Context) error {
	if m.OnClear != nil {
		return m.OnClear(ctx)
	}
	return nil
}

func (m *MockStore) ClearNamespace(ctx context.Context, namespace string) error {
	if m.OnClearNamespace != nil {
		return m.OnClearNamespace(ctx, namespace)
	}
	return nil
}

func (m *MockStore) GetAll(ctx context.Context) ([]commonModels.Chunk, error) {
	if m.OnGetAll != nil {
		return m.OnGetAll(ctx)
	}
	return nil, nil
}

func (m *MockStore) Count(ctx context.Context, namespace string) (int, error) {
	if m.OnCount != nil {
		return m.OnCount(ctx, namespace)
	}
	return 0, nil
}

// MockCache implements cache.AnswerCache
type MockCache struct {
	OnGetCachedAnswer func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache     func(ctx context.Context, id string, queryVector []float32, answer string) error
}

func (m *MockCache) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, queryVector)
	}
	return "", false, nil
}

func (m *MockCache) SaveToCache(ctx context.Context, id string, queryVector []float32, answer string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, queryVector, answer)
	}
	return nil
}

// MockRetriever implements retrieval.Retriever
type MockRetriever struct {
	OnRetrieve           func(ctx context.Context, question string, opts retrieval.Options) (retrieval.Result, error)
	OnRetrieveWithVector func(ctx context.Context, queryVector []float32, opts retrieval.Options) (retrieval.Result, error)
}

// DefaultResult is what the mock retriever hands back unless overridden.
func DefaultResult() retrieval.Result {
	return retrieval.Result{
		Chunks: []commonModels.Chunk{
			{
				Id:      "c1",
				Content: "default context",
				Metadata: commonModels.ChunkMetadata{
					Source: commonModels.SourceUploaded,
					Title:  "Doc",
				},
			},
		},
		ContextBlock: "[Source 1: Doc]\ndefault context",
		Sources:      []commonModels.SourceRef{{Title: "Doc", Section: "main"}},
		DomainLabel:  "the uploaded documents",
	}
}

func (m *MockRetriever) Retrieve(ctx context.Context, question string, opts retrieval.Options) (retrieval.Result, error) {
	if m.OnRetrieve != nil {
		return m.OnRetrieve(ctx, question, opts)
	}
	return DefaultResult(), nil
}

func (m *MockRetriever) RetrieveWithVector(ctx context.Context, queryVector []float32, opts retrieval.Options) (retrieval.Result, error) {
	if m.OnRetrieveWithVector != nil {
		return m.OnRetrieveWithVector(ctx, queryVector, opts)
	}
	return DefaultResult(), nil
}

type MockEmbedder struct {
	OnGetEmbedding func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, question, contextBlock, domainLabel string, history []string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, question, contextBlock, domainLabel string, history []string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, question, contextBlock, domainLabel, history)
	}
	return "mocked llm response", nil
}
