package handlers

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/suryak02/RAG-chatbot-system/internal/adapter/utils"
	"github.com/suryak02/RAG-chatbot-system/internal/api"
	"github.com/suryak02/RAG-chatbot-system/internal/rag"
	"github.com/suryak02/RAG-chatbot-system/pkg/logger_i"
)

// The knowledge base endpoints are synchronous, they never go through the
// job channel. They hold their own reference to the RAG service instead of
// borrowing the job handler's plumbing.
var (
	kbService rag.Service
	kbOnce    sync.Once
	logKB     *logger_i.Logger
)

func InitKBHandler(ragService rag.Service) {
	kbOnce.Do(func() {
		kbService = ragService
		logKB = logger_i.NewLogger("KBHandler")
		logKB.Info("Starting knowledge base handler")
	})
}

// KBCountHandler godoc
// @Summary      Count stored chunks
// @Description  Returns how many chunks are stored, optionally scoped to a namespace.
// @Tags         Knowledge Base
// @Produce      json
// @Param        namespace  query     string  false  "Namespace to count within"
// @Success      200  {object}  api.CountResponse
// @Failure      500  {object}  api.JobResponse "Store error"
// @Router       /kb/count [get]
func KBCountHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logKB.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}
	namespace := r.URL.Query().Get("namespace")
	count, err := kbService.Count(r.Context(), namespace)
	if err != nil {
		logKB.Error("Count failed", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not count chunks")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.CountResponse{Namespace: namespace, Count: count})
}

// KBPreviewHandler godoc
// @Summary      Preview stored chunks
// @Description  Returns id, title, source and a content preview for up to limit chunks.
// @Tags         Knowledge Base
// @Produce      json
// @Param        namespace  query     string  false  "Namespace to preview"
// @Param        limit      query     int     false  "Max chunks to return, defaults to 10"
// @Success      200  {object}  api.PreviewResponse
// @Failure      500  {object}  api.JobResponse "Store error"
// @Router       /kb/preview [get]
func KBPreviewHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logKB.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}
	namespace := r.URL.Query().Get("namespace")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	previews, err := kbService.Preview(r.Context(), namespace, limit)
	if err != nil {
		logKB.Error("Preview failed", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not preview chunks")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.PreviewResponse{Chunks: previews})
}

// KBClearNamespaceHandler godoc
// @Summary      Delete one namespace
// @Description  Removes every chunk filed under the given namespace, other namespaces are untouched.
// @Tags         Knowledge Base
// @Produce      json
// @Param        namespace  path      string  true  "Namespace to clear"
// @Success      200  {object}  map[string]string "Cleared"
// @Failure      400  {object}  api.JobResponse "Missing namespace"
// @Failure      500  {object}  api.JobResponse "Store error"
// @Router       /kb/namespace/{namespace} [delete]
func KBClearNamespaceHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logKB.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}
	namespace := utils.GetChiURLParam(r, "namespace")
	if namespace == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "namespace is required")
		return
	}
	if err := kbService.ClearNamespace(r.Context(), namespace); err != nil {
		logKB.Error("ClearNamespace failed", "namespace", namespace, "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not clear namespace")
		return
	}
	writeJsonResponse(w, http.StatusOK, map[string]string{"status": "cleared", "namespace": namespace})
}

// KBClearHandler godoc
// @Summary      Delete the whole knowledge base
// @Description  Removes every stored chunk across all namespaces.
// @Tags         Knowledge Base
// @Produce      json
// @Success      200  {object}  map[string]string "Cleared"
// @Failure      500  {object}  api.JobResponse "Store error"
// @Router       /kb [delete]
func KBClearHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logKB.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}
	if err := kbService.Clear(r.Context()); err != nil {
		logKB.Error("Clear failed", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not clear knowledge base")
		return
	}
	writeJsonResponse(w, http.StatusOK, map[string]string{"status": "cleared"})
}
