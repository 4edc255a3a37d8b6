package memoryDB

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
)

func chunkWithVector(id string, namespace string, embedding []float32) commonModels.Chunk {
	return commonModels.Chunk{
		Id:        id,
		Content:   "content of " + id,
		Embedding: embedding,
		Metadata: commonModels.ChunkMetadata{
			Source:    commonModels.SourceUploaded,
			Title:     "doc",
			Namespace: namespace,
		},
	}
}

func TestSimilaritySearch_SortedAndCapped(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()

	err := store.AddMany(ctx, []commonModels.Chunk{
		chunkWithVector("exact", "", []float32{1, 0}),
		chunkWithVector("close", "", []float32{0.9, 0.1}),
		chunkWithVector("orthogonal", "", []float32{0, 1}),
		chunkWithVector("opposite", "", []float32{-1, 0}),
	})
	if err != nil {
		t.Fatalf("AddMany failed: %v", err)
	}

	results, err := store.SimilaritySearch(ctx, []float32{1, 0}, 2, 0.5, "")
	if err != nil {
		t.Fatalf("SimilaritySearch failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Id != "exact" || results[1].Id != "close" {
		t.Errorf("results out of order: %s, %s", results[0].Id, results[1].Id)
	}
}

func TestSimilaritySearch_ThresholdFilters(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()
	_ = store.Add(ctx, chunkWithVector("orthogonal", "", []float32{0, 1}))

	results, _ := store.SimilaritySearch(ctx, []float32{1, 0}, 5, 0.5, "")
	if len(results) != 0 {
		t.Errorf("expected nothing above threshold, got %d", len(results))
	}

	results, _ = store.SimilaritySearch(ctx, []float32{1, 0}, 5, 0, "")
	if len(results) != 1 {
		t.Errorf("threshold 0 should include the orthogonal chunk, got %d", len(results))
	}
}

func TestSimilaritySearch_NamespaceScoping(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()
	_ = store.Add(ctx, chunkWithVector("a-1", "acme", []float32{1, 0}))
	_ = store.Add(ctx, chunkWithVector("g-1", "globex", []float32{1, 0}))
	_ = store.Add(ctx, chunkWithVector("untagged", "", []float32{1, 0}))

	results, _ := store.SimilaritySearch(ctx, []float32{1, 0}, 10, 0, "acme")
	if len(results) != 1 || results[0].Id != "a-1" {
		t.Errorf("expected only the acme chunk, got %+v", results)
	}

	results, _ = store.SimilaritySearch(ctx, []float32{1, 0}, 10, 0, "")
	if len(results) != 3 {
		t.Errorf("empty namespace should search everything, got %d", len(results))
	}
}

func TestSimilaritySearch_DimensionMismatchScoresZero(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()
	_ = store.Add(ctx, chunkWithVector("threedim", "", []float32{1, 0, 0}))

	// Mismatched query must not panic and must score the chunk at zero.
	results, err := store.SimilaritySearch(ctx, []float32{1, 0}, 5, 0.1, "")
	if err != nil {
		t.Fatalf("SimilaritySearch failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("mismatched dimensions should score 0 and miss the threshold, got %d", len(results))
	}
}

func TestClearNamespace_RemovesOnlyTaggedChunks(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()
	_ = store.AddMany(ctx, []commonModels.Chunk{
		chunkWithVector("a-1", "acme", []float32{1, 0}),
		chunkWithVector("a-2", "acme", []float32{1, 0}),
		chunkWithVector("g-1", "globex", []float32{1, 0}),
		chunkWithVector("untagged", "", []float32{1, 0}),
	})

	if err := store.ClearNamespace(ctx, " acme "); err != nil {
		t.Fatalf("ClearNamespace failed: %v", err)
	}

	count, _ := store.Count(ctx, "")
	if count != 2 {
		t.Errorf("expected 2 chunks left, got %d", count)
	}

	all, _ := store.GetAll(ctx)
	for _, c := range all {
		if c.Metadata.Namespace == "acme" {
			t.Errorf("acme chunk %s survived ClearNamespace", c.Id)
		}
	}
}

func TestClearNamespace_EmptyNamespaceIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()
	_ = store.Add(ctx, chunkWithVector("untagged", "", []float32{1, 0}))
	_ = store.Add(ctx, chunkWithVector("a-1", "acme", []float32{1, 0}))

	if err := store.ClearNamespace(ctx, "   "); err != nil {
		t.Fatalf("ClearNamespace failed: %v", err)
	}

	count, _ := store.Count(ctx, "")
	if count != 2 {
		t.Errorf("empty namespace must remove nothing, got count %d", count)
	}
}

func TestClear_DropsEverything(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()
	_ = store.Add(ctx, chunkWithVector("a-1", "acme", []float32{1, 0}))

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	count, _ := store.Count(ctx, "")
	if count != 0 {
		t.Errorf("expected empty store, got %d", count)
	}
}

func TestCount_PerNamespace(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()
	_ = store.AddMany(ctx, []commonModels.Chunk{
		chunkWithVector("a-1", "acme", []float32{1, 0}),
		chunkWithVector("a-2", "acme", []float32{1, 0}),
		chunkWithVector("untagged", "", []float32{1, 0}),
	})

	if count, _ := store.Count(ctx, "acme"); count != 2 {
		t.Errorf("Count(acme) = %d; want 2", count)
	}
	if count, _ := store.Count(ctx, ""); count != 3 {
		t.Errorf("Count() = %d; want 3", count)
	}
}

func TestGetAll_ReturnsDefensiveCopy(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()
	_ = store.Add(ctx, chunkWithVector("a-1", "acme", []float32{1, 0}))

	all, _ := store.GetAll(ctx)
	all[0].Id = "mutated"
	_ = append(all, chunkWithVector("rogue", "", []float32{0, 1}))

	again, _ := store.GetAll(ctx)
	if len(again) != 1 || again[0].Id != "a-1" {
		t.Errorf("store state leaked through GetAll: %+v", again)
	}
}

func TestVectorStore_ConcurrentReadersAndWriters(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(2)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = store.Add(ctx, chunkWithVector(fmt.Sprintf("c-%d-%d", g, i), "", []float32{1, 0}))
			}
		}(g)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, _ = store.SimilaritySearch(ctx, []float32{1, 0}, 3, 0, "")
			}
		}()
	}
	wg.Wait()

	count, _ := store.Count(ctx, "")
	if count != 8*50 {
		t.Errorf("expected %d chunks after concurrent writes, got %d", 8*50, count)
	}
}
