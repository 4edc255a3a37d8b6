package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/suryak02/RAG-chatbot-system/internal/adapter"
	"github.com/suryak02/RAG-chatbot-system/internal/adapter/utils"
	"github.com/suryak02/RAG-chatbot-system/internal/api"
	"github.com/suryak02/RAG-chatbot-system/internal/config"
	"github.com/suryak02/RAG-chatbot-system/internal/domain/jobModel"
)

// ingestUpload is what PostIngestHandler hands off once the file is on disk.
type ingestUpload struct {
	documentName string
	documentPath string
	sourceLabel  string
	namespace    string
}

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response: %v", err)
	}
}

func validateId(id string, traceId string) (result jobModel.Job, isFound bool) {
	if id == "" {
		logRH.Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return GetJobStatus(id, traceId)
}

func validateContext(ctx context.Context) bool {
	log := logRH.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if ctx.Err() != nil {
		log.Warn("context error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		log.Warn("context cancelled")
		return false
	default:
		return true

	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

func getTargetDirectory() (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, "temporary_data")
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}

func queueChatJob(request *http.Request, w http.ResponseWriter, requestData api.ChatRequest) {
	chatID := requestData.ChatID
	isNewChat := false
	if chatID == "" {
		chatID = utils.GetNewUUID()
		logRH.Debug(" New Chat request : ", "chatID:", chatID)
		isNewChat = true
	}

	traceId, _ := request.Context().Value(config.TRACE_ID_KEY).(string)
	newJob := newJobData{
		id:        utils.GetNewUUID(),
		chatId:    chatID,
		message:   requestData.Message,
		namespace: requestData.Namespace,
		isNewChat: isNewChat,
		traceId:   traceId,
	}
	CreateNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

func queueIngestJob(request *http.Request, w http.ResponseWriter, upload ingestUpload) {
	traceId, _ := request.Context().Value(config.TRACE_ID_KEY).(string)
	newJob := newJobData{
		id:               utils.GetNewUUID(),
		traceId:          traceId,
		isDocumentIngest: true,
		documentName:     upload.documentName,
		documentSource:   upload.documentPath,
		sourceLabel:      upload.sourceLabel,
		namespace:        upload.namespace,
	}
	CreateNewJob(newJob)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}
