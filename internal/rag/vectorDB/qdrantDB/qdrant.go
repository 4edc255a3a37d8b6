package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
)

var logger = logger_i.NewLogger("Qdrant")

const scrollPageSize = 256

// VectorStore holds chunks in one qdrant collection. Each instance owns its
// collection, so the chunk store and the answer cache never share points.
type VectorStore struct {
	client     *qdrant.Client
	collection string
}

// NewVectorStore connects to qdrant and ensures the collection exists with
// the configured embedding dimension.
func NewVectorStore(ctx context.Context, collection string) (*VectorStore, error) {
	if strings.TrimSpace(collection) == "" {
		return nil, errors.New("empty collection name")
	}

	host := os.Getenv("QDRANT_HOST")
	port, err := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if host == "" || err != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		APIKey:   os.Getenv("QDRANT_API_KEY"),
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
		GrpcOptions: []grpc.DialOption{
			grpc.WithKeepaliveParams(keepalive.ClientParameters{Time: config.QdrantKeepAliveTimeout}),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant client: %w", err)
	}

	s := &VectorStore{client: client, collection: collection}
	if err := s.ensureCollection(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ensuring collection %s: %w", collection, err)
	}
	return s, nil
}

// Close releases the underlying grpc connection.
func (s *VectorStore) Close() error {
	logger.Info("Shutting down Qdrant")
	return s.client.Close()
}

func (s *VectorStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(config.EmbeddingDimension()),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (s *VectorStore) Add(ctx context.Context, chunk commonModels.Chunk) error {
	return s.AddMany(ctx, []commonModels.Chunk{chunk})
}

func (s *VectorStore) AddMany(ctx context.Context, chunks []commonModels.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(pointId(chunk.Id)),
			Vectors: qdrant.NewVectors(chunk.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":  chunk.Id,
				"content":   chunk.Content,
				"source":    chunk.Metadata.Source,
				"title":     chunk.Metadata.Title,
				"url":       chunk.Metadata.URL,
				"section":   chunk.Metadata.Section,
				"namespace": chunk.Metadata.Namespace,
			}),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (s *VectorStore) SimilaritySearch(ctx context.Context, queryVector []float32, k int, threshold float32, namespace string) ([]commonModels.Chunk, error) {
	if k <= 0 {
		return nil, nil
	}
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		ScoreThreshold: qdrant.PtrOf(threshold),
		Filter:         namespaceFilter(namespace),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	chunks := make([]commonModels.Chunk, 0, len(hits))
	for _, hit := range hits {
		chunks = append(chunks, payloadToChunk(hit.GetPayload(), hit.GetVectors().GetVector().GetData()))
	}
	loggr.Debug("Qdrant query complete", "hits", len(chunks))
	return chunks, nil
}

func (s *VectorStore) Clear(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("qdrant delete collection failed: %w", err)
	}
	return s.ensureCollection(ctx)
}

func (s *VectorStore) ClearNamespace(ctx context.Context, namespace string) error {
	filter := namespaceFilter(namespace)
	if filter == nil {
		return nil
	}
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelectorFilter(filter),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func (s *VectorStore) GetAll(ctx context.Context) ([]commonModels.Chunk, error) {
	var chunks []commonModels.Chunk
	var offset *qdrant.PointId
	for {
		// The wrapper client drops the scroll cursor, so page on the raw
		// points client.
		resp, err := s.client.GetPointsClient().Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Limit:          qdrant.PtrOf(uint32(scrollPageSize)),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(true),
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant scroll failed: %w", err)
		}
		for _, p := range resp.GetResult() {
			chunks = append(chunks, payloadToChunk(p.GetPayload(), p.GetVectors().GetVector().GetData()))
		}
		offset = resp.GetNextPageOffset()
		if offset == nil {
			return chunks, nil
		}
	}
}

func (s *VectorStore) Count(ctx context.Context, namespace string) (int, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Filter:         namespaceFilter(namespace),
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count failed: %w", err)
	}
	return int(count), nil
}

// pointId derives a stable UUID from a chunk id, which qdrant requires as
// point identifier. Same chunk id always maps to the same point.
func pointId(chunkId string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkId)).String()
}

// namespaceFilter is nil for a blank namespace, matching everything.
func namespaceFilter(namespace string) *qdrant.Filter {
	ns := strings.TrimSpace(namespace)
	if ns == "" {
		return nil
	}
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch("namespace", ns)},
	}
}

func payloadToChunk(payload map[string]*qdrant.Value, vector []float32) commonModels.Chunk {
	return commonModels.Chunk{
		Id:        payload["chunk_id"].GetStringValue(),
		Content:   payload["content"].GetStringValue(),
		Embedding: vector,
		Metadata: commonModels.ChunkMetadata{
			Source:    payload["source"].GetStringValue(),
			Title:     payload["title"].GetStringValue(),
			URL:       payload["url"].GetStringValue(),
			Section:   payload["section"].GetStringValue(),
			Namespace: payload["namespace"].GetStringValue(),
		},
	}
}
