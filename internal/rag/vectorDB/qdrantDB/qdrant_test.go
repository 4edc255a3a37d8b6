package qdrantDB

import (
	"testing"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

func TestPointId_StableAndValidUUID(t *testing.T) {
	first := pointId("doc-123-0")
	second := pointId("doc-123-0")
	if first != second {
		t.Errorf("pointId is not stable: %s vs %s", first, second)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Errorf("pointId %q is not a valid UUID: %v", first, err)
	}
	if pointId("doc-123-1") == first {
		t.Error("distinct chunk ids must map to distinct point ids")
	}
}

func TestNamespaceFilter(t *testing.T) {
	if namespaceFilter("") != nil {
		t.Error("blank namespace must produce no filter")
	}
	if namespaceFilter("   ") != nil {
		t.Error("whitespace namespace must produce no filter")
	}
	filter := namespaceFilter(" acme ")
	if filter == nil || len(filter.Must) != 1 {
		t.Fatalf("expected a single must condition, got %+v", filter)
	}
}

func TestPayloadToChunk_MapsAllFields(t *testing.T) {
	payload := qdrant.NewValueMap(map[string]any{
		"chunk_id":  "doc-1-0",
		"content":   "body",
		"source":    "uploaded",
		"title":     "Guide",
		"url":       "https://example.com",
		"section":   "Setup",
		"namespace": "acme",
	})

	chunk := payloadToChunk(payload, []float32{1, 2})
	if chunk.Id != "doc-1-0" || chunk.Content != "body" {
		t.Errorf("unexpected chunk identity %+v", chunk)
	}
	if chunk.Metadata.Source != "uploaded" || chunk.Metadata.Title != "Guide" ||
		chunk.Metadata.URL != "https://example.com" || chunk.Metadata.Section != "Setup" ||
		chunk.Metadata.Namespace != "acme" {
		t.Errorf("unexpected chunk metadata %+v", chunk.Metadata)
	}
	if len(chunk.Embedding) != 2 {
		t.Errorf("embedding not carried through, got %v", chunk.Embedding)
	}
}

func TestPayloadToChunk_MissingKeysAreZeroValues(t *testing.T) {
	chunk := payloadToChunk(map[string]*qdrant.Value{}, nil)
	if chunk.Id != "" || chunk.Metadata.Namespace != "" {
		t.Errorf("missing payload keys must map to zero values, got %+v", chunk)
	}
}
