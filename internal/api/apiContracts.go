package api

import (
	"time"

	"github.com/suryak02/RAG-chatbot-system/internal/domain/commonModels"
)

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id" example:"chat_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question            string                   `json:"question"`
	Answer              string                   `json:"answer"`
	Sources             []commonModels.SourceRef `json:"sources"`
	RetrievedChunkCount int                      `json:"retrieved_chunk_count"`
	ElapsedMs           int64                    `json:"elapsed_ms"`
}

type Result struct {
	Status              string                    `json:"status"`
	RAGExternalResponse *RAGResponse              `json:"rag_response,omitempty"`
	IngestResult        *commonModels.IngestStats `json:"ingest_result,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type CountResponse struct {
	Namespace string `json:"namespace,omitempty"`
	Count     int    `json:"count"`
}

type PreviewResponse struct {
	Chunks []commonModels.ChunkPreview `json:"chunks"`
}

// requests---------------------

type ChatRequest struct {
	Message   string `json:"message" validate:"required" `
	ChatID    string `json:"chatID,omitempty" `
	Namespace string `json:"namespace,omitempty"`
}
type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}

type IngestDocumentRequest struct {
	DocumentName string `json:"document_name" validate:"required"`
	SourceLabel  string `json:"source_label,omitempty"`
	Namespace    string `json:"namespace,omitempty"`
}
