package ingest

import (
	"context"
	"os"
	"strings"

	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/jobModel"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/embedding"
	"github.com/suryak02/RAG-chatbot-system/internal/rag/vectorDB"
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Ingestion ")

// ProcessDocumentIngestion runs the whole write path for one uploaded file:
// extract, normalize, section, chunk, embed, store. The uploaded temp file
// is removed whatever the outcome. Per-chunk failures end up in the job's
// ingest stats instead of failing the job; the job only errors when nothing
// usable came out of the file.
func ProcessDocumentIngestion(ctx context.Context, job jobModel.Job, e embedding.Embedder, store vectorDB.Store, transcriber Transcriber) jobModel.Job {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	docName := job.JobPayload.IngestFileName
	docPath := job.JobPayload.IngestURL

	log.Debug("Processing document", "filename", docName, "path", docPath)

	job.CurrentStep = jobModel.IngestProcessing

	docType := getDocType(docPath)
	log.Debug("Processing document", "type", docType)
	if docType == commonModels.ERR {
		log.Error("Unsupported document type", "path", docPath)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Unsupported document type"
		removeIngestFile(docPath, log)
		return job
	}

	text, trace, err := extractText(ctx, docPath, docType, transcriber)
	if err != nil || strings.TrimSpace(text) == "" {
		log.Error("Error extracting document content", "trace", trace, "error", err)
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Error extracting document content"
		removeIngestFile(docPath, log)
		return job
	}
	log.Debug("Extracted document", "trace", trace)

	doc := BuildDocument(docName, text, "")
	chunks := PrepareChunks(doc, job.JobPayload.SourceLabel, job.JobPayload.Namespace)
	log.Debug("Prepared document", "chunks", len(chunks), "sections", len(doc.Sections))

	job.CurrentStep = jobModel.EmbeddingAPICall
	stats := EmbedAndStore(ctx, chunks, e, store)
	stats.FilesProcessed = 1
	job.JobPayload.IngestStats = &stats

	removeIngestFile(docPath, log)

	if stats.ChunksTotal > 0 && stats.ChunksSucceeded == 0 {
		job.Status = jobModel.JobStatusError
		job.Error.Message = "Embedding failed for every chunk"
		return job
	}

	job.Status = jobModel.JobStatusComplete
	return job
}

func removeIngestFile(path string, log *logger_i.Logger) {
	if err := os.Remove(path); err != nil {
		log.Error("Error removing file", "error", err)
	}
}
