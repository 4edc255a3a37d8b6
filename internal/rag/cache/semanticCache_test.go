package cache

import (
	"context"
	"testing"

	"github.com/suryak02/RAG-chatbot-system/internal/rag/vectorDB/memoryDB"
)

func TestCache_HitOnNearIdenticalQuery(t *testing.T) {
	c := NewSemanticCache(memoryDB.NewVectorStore())
	ctx := context.Background()

	vec := []float32{0.6, 0.8, 0}
	if err := c.SaveToCache(ctx, "q1", vec, "Paris is the capital of France."); err != nil {
		t.Fatalf("SaveToCache: %v", err)
	}

	answer, hit, err := c.GetCachedAnswer(ctx, []float32{0.6, 0.8, 0})
	if err != nil {
		t.Fatalf("GetCachedAnswer: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit for identical query vector")
	}
	if answer != "Paris is the capital of France." {
		t.Errorf("unexpected cached answer %q", answer)
	}
}

func TestCache_MissWhenQueryTooFar(t *testing.T) {
	c := NewSemanticCache(memoryDB.NewVectorStore())
	ctx := context.Background()

	if err := c.SaveToCache(ctx, "q1", []float32{1, 0, 0}, "answer one"); err != nil {
		t.Fatalf("SaveToCache: %v", err)
	}

	// Orthogonal vector scores 0, far below the cutoff.
	answer, hit, err := c.GetCachedAnswer(ctx, []float32{0, 1, 0})
	if err != nil {
		t.Fatalf("GetCachedAnswer: %v", err)
	}
	if hit {
		t.Errorf("expected cache miss, got hit with answer %q", answer)
	}
}

func TestCache_MissOnEmptyStore(t *testing.T) {
	c := NewSemanticCache(memoryDB.NewVectorStore())

	_, hit, err := c.GetCachedAnswer(context.Background(), []float32{1, 0, 0})
	if err != nil {
		t.Fatalf("GetCachedAnswer: %v", err)
	}
	if hit {
		t.Error("expected cache miss on empty store")
	}
}
