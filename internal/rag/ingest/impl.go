package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/suryak02/RAG-chatbot-system/internal/adapter/utils"
	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/embedding"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/vectorDB"
)

func getDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".odt", ".rtf":
		return commonModels.DOCX
	case ".md", ".markdown":
		return commonModels.MD
	case ".txt":
		return commonModels.TXT
	case ".mp3", ".wav", ".m4a", ".ogg", ".flac":
		return commonModels.AUDIO
	default:
		return commonModels.ERR
	}
}

func extractText(ctx context.Context, path string, contentType commonModels.DocType, transcriber Transcriber) (string, string, error) {
	switch contentType {
	case commonModels.PDF:
		return extractPDF(path)
	case commonModels.DOCX:
		return extractDocLike(path)
	case commonModels.MD, commonModels.TXT:
		return extractPlain(path)
	case commonModels.AUDIO:
		return extractAudio(ctx, path, transcriber)
	default:
		return "", "", fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// BuildDocument normalizes raw text and derives the section list. The
// document is transient; it exists only long enough to be chunked.
func BuildDocument(title string, rawText string, url string) commonModels.Document {
	content := Normalize(rawText)
	return commonModels.Document{
		Id:       utils.GetNewUUID(),
		Title:    title,
		Content:  content,
		URL:      url,
		Sections: ExtractSections(content),
	}
}

// PrepareChunks chunks the whole document content once, then every section
// once more with the section title prepended. The duplication is deliberate:
// a query may match the section-scoped phrasing better than the
// whole-document phrasing, or the other way round, so both sets are kept.
func PrepareChunks(doc commonModels.Document, sourceLabel string, namespace string) []commonModels.Chunk {
	if sourceLabel == "" {
		sourceLabel = commonModels.SourceUploaded
	}
	namespace = strings.TrimSpace(namespace)

	var chunks []commonModels.Chunk
	appendChunk := func(content string, section string) {
		chunks = append(chunks, commonModels.Chunk{
			Id:      fmt.Sprintf("%s-%d", doc.Id, len(chunks)),
			Content: content,
			Metadata: commonModels.ChunkMetadata{
				Source:    sourceLabel,
				Title:     doc.Title,
				URL:       doc.URL,
				Section:   section,
				Namespace: namespace,
			},
		})
	}

	for _, piece := range SplitText(doc.Content, config.ChunkSize, config.ChunkOverlap) {
		appendChunk(piece, "")
	}

	for _, section := range doc.Sections {
		if strings.TrimSpace(section.Content) == "" {
			continue
		}
		sectionText := section.Title + "\n\n" + section.Content
		for _, piece := range SplitText(sectionText, config.ChunkSize, config.ChunkOverlap) {
			appendChunk(piece, section.Title)
		}
	}

	return chunks
}

// EmbedAndStore embeds chunks one at a time and inserts each successful one
// into the store. Chunks are processed sequentially to stay inside provider
// rate limits. A failed chunk is counted and its error recorded without
// aborting the batch; one bad chunk must not fail an entire upload.
func EmbedAndStore(ctx context.Context, chunks []commonModels.Chunk, embedder embedding.Embedder, store vectorDB.Store) commonModels.IngestStats {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	stats := commonModels.IngestStats{ChunksTotal: len(chunks)}

	for i := range chunks {
		if err := ctx.Err(); err != nil {
			stats.ChunksFailed += len(chunks) - i
			stats.Errors = append(stats.Errors, fmt.Sprintf("ingestion cancelled: %v", err))
			log.Warn("Ingestion cancelled mid batch", "remaining", len(chunks)-i)
			break
		}

		vector, err := embedder.GetEmbedding(ctx, chunks[i].Content)
		if err != nil {
			stats.ChunksFailed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("chunk %s: %v", chunks[i].Id, err))
			log.Warn("Embedding chunk failed", "chunkId", chunks[i].Id, "error", err)
			continue
		}

		chunks[i].Embedding = vector
		if err := store.Add(ctx, chunks[i]); err != nil {
			stats.ChunksFailed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("chunk %s: %v", chunks[i].Id, err))
			log.Warn("Storing chunk failed", "chunkId", chunks[i].Id, "error", err)
			continue
		}
		stats.ChunksSucceeded++
	}

	return stats
}
