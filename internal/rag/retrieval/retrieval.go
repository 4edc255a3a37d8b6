package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/embedding"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/vectorDB"
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
)

var logger = logger_i.NewLogger("Retrieval Policy")

// EmptyKnowledgeBaseAnswer is returned verbatim when no chunk exists in the
// applicable pool. It is a successful result, not an error.
const EmptyKnowledgeBaseAnswer = "The knowledge base is empty. Please upload documents before asking questions."

const contextDivider = "\n\n---\n\n"

// Options tune one retrieval call. Zero values fall back to the configured
// defaults.
type Options struct {
	MaxResults          int
	SimilarityThreshold float32
	Namespace           string
}

// Result carries everything the generation step needs for one query.
type Result struct {
	Chunks       []commonModels.Chunk
	ContextBlock string
	Sources      []commonModels.SourceRef
	DomainLabel  string
	ElapsedMs    int64
}

// Empty reports whether the knowledge base had nothing to retrieve from.
func (r Result) Empty() bool {
	return len(r.Chunks) == 0
}

// Retriever selects and formats the evidence for a question. It is stateless
// across calls; every call is an independent read of the current store.
type Retriever interface {
	Retrieve(ctx context.Context, question string, opts Options) (Result, error)
	RetrieveWithVector(ctx context.Context, queryVector []float32, opts Options) (Result, error)
}

type retriever struct {
	embedder embedding.Embedder
	store    vectorDB.Store
	offline  bool
}

// NewRetriever builds the retrieval policy over the given store. When offline
// is set the similarity threshold is forced to zero, since synthetic
// embeddings carry no calibrated similarity scale.
func NewRetriever(embedder embedding.Embedder, store vectorDB.Store, offline bool) Retriever {
	return &retriever{embedder: embedder, store: store, offline: offline}
}

func (r *retriever) Retrieve(ctx context.Context, question string, opts Options) (Result, error) {
	queryVector, err := r.embedder.GetEmbedding(ctx, question)
	if err != nil {
		return Result{}, fmt.Errorf("embedding question: %w", err)
	}
	return r.RetrieveWithVector(ctx, queryVector, opts)
}

func (r *retriever) RetrieveWithVector(ctx context.Context, queryVector []float32, opts Options) (Result, error) {
	start := time.Now()
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if opts.MaxResults <= 0 {
		opts.MaxResults = config.DefaultMaxResults
	}
	threshold := opts.SimilarityThreshold
	if threshold <= 0 {
		threshold = config.DefaultSimilarityThreshold
	}
	if r.offline {
		threshold = 0
	}

	chunks, err := r.selectCandidates(ctx, queryVector, opts, threshold, log)
	if err != nil {
		return Result{}, err
	}

	result := Result{Chunks: chunks}
	if len(chunks) == 0 {
		log.Info("No chunks in the applicable pool, returning empty result")
		result.ElapsedMs = time.Since(start).Milliseconds()
		return result, nil
	}

	result.ContextBlock = BuildContext(chunks)
	result.Sources = CollectSources(chunks)
	result.DomainLabel = DomainLabel(chunks[0].Metadata.Source)
	result.ElapsedMs = time.Since(start).Milliseconds()

	log.Info("Retrieval complete", "chunks", len(chunks), "sources", len(result.Sources), "elapsedMs", result.ElapsedMs)
	return result, nil
}

// selectCandidates applies the pool policy: uploaded documents win outright
// when any exist, otherwise a relaxing threshold ladder over the namespace
// pool, and as a last resort the head of the pool itself. The contract is
// that the result is empty only when the pool is.
func (r *retriever) selectCandidates(ctx context.Context, queryVector []float32, opts Options, threshold float32, log *logger_i.Logger) ([]commonModels.Chunk, error) {
	all, err := r.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading vector store: %w", err)
	}
	if len(all) == 0 {
		return nil, nil
	}

	if uploaded := filterBySource(all, commonModels.SourceUploaded); len(uploaded) > 0 {
		log.Debug("Uploaded documents present, restricting pool", "poolSize", len(uploaded))
		return rankTopK(uploaded, queryVector, opts.MaxResults), nil
	}

	for _, t := range thresholdLadder(threshold) {
		chunks, err := r.store.SimilaritySearch(ctx, queryVector, opts.MaxResults, t, opts.Namespace)
		if err != nil {
			return nil, fmt.Errorf("similarity search: %w", err)
		}
		if len(chunks) > 0 {
			return chunks, nil
		}
		log.Debug("No matches, relaxing threshold", "threshold", t)
	}

	pool := filterByNamespace(all, opts.Namespace)
	if len(pool) > opts.MaxResults {
		pool = pool[:opts.MaxResults]
	}
	if len(pool) > 0 {
		log.Warn("Forcing low-similarity results over an empty answer", "chunks", len(pool))
	}
	return pool, nil
}

// thresholdLadder yields the thresholds to try in order, each clamped to
// [0,1], duplicates removed. Zero is always one of the rungs.
func thresholdLadder(base float32) []float32 {
	ladder := make([]float32, 0, 3)
	for _, t := range []float32{base, config.FallbackSimilarityThreshold, 0} {
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		duplicate := false
		for _, prev := range ladder {
			if prev == t {
				duplicate = true
				break
			}
		}
		if !duplicate {
			ladder = append(ladder, t)
		}
	}
	return ladder
}

func filterBySource(chunks []commonModels.Chunk, source string) []commonModels.Chunk {
	var out []commonModels.Chunk
	for _, c := range chunks {
		if c.Metadata.Source == source {
			out = append(out, c)
		}
	}
	return out
}

func filterByNamespace(chunks []commonModels.Chunk, namespace string) []commonModels.Chunk {
	ns := strings.TrimSpace(namespace)
	if ns == "" {
		return chunks
	}
	var out []commonModels.Chunk
	for _, c := range chunks {
		if c.Metadata.Namespace == ns {
			out = append(out, c)
		}
	}
	return out
}

// rankTopK sorts the pool by cosine similarity against the query vector and
// keeps the best k. Ties keep insertion order.
func rankTopK(pool []commonModels.Chunk, queryVector []float32, k int) []commonModels.Chunk {
	type scoredChunk struct {
		chunk commonModels.Chunk
		score float32
	}
	ranked := make([]scoredChunk, 0, len(pool))
	for _, c := range pool {
		ranked = append(ranked, scoredChunk{chunk: c, score: vectorDB.CosineSimilarity(queryVector, c.Embedding)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]commonModels.Chunk, len(ranked))
	for i, s := range ranked {
		out[i] = s.chunk
	}
	return out
}

// BuildContext formats retrieved chunks as numbered source blocks for the
// generation prompt.
func BuildContext(chunks []commonModels.Chunk) string {
	blocks := make([]string, 0, len(chunks))
	for i, c := range chunks {
		var b strings.Builder
		fmt.Fprintf(&b, "[Source %d: %s", i+1, c.Metadata.Title)
		if c.Metadata.Section != "" {
			b.WriteString(" - ")
			b.WriteString(c.Metadata.Section)
		}
		b.WriteString("]\n")
		b.WriteString(c.Content)
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, contextDivider)
}

// CollectSources deduplicates citations by (title, section), first occurrence
// wins. Chunks without a section are cited as "main".
func CollectSources(chunks []commonModels.Chunk) []commonModels.SourceRef {
	seen := make(map[string]bool, len(chunks))
	var sources []commonModels.SourceRef
	for _, c := range chunks {
		section := c.Metadata.Section
		if section == "" {
			section = "main"
		}
		key := c.Metadata.Title + "\x00" + section
		if seen[key] {
			continue
		}
		seen[key] = true
		sources = append(sources, commonModels.SourceRef{
			Title:   c.Metadata.Title,
			Section: section,
			URL:     c.Metadata.URL,
		})
	}
	return sources
}

// DomainLabel phrases where the evidence came from for the generation prompt.
func DomainLabel(source string) string {
	switch source {
	case commonModels.SourceUploaded:
		return "the uploaded documents"
	case commonModels.SourceOpenAIDocs:
		return "the OpenAI documentation"
	case commonModels.SourceUniversalDocs:
		return "the built-in reference library"
	default:
		return "the provided knowledge base"
	}
}
