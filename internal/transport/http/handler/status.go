package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pdfqa/internal/cache"
	"pdfqa/internal/repository"
	"pdfqa/internal/transport/http/response"
	"pdfqa/internal/vectorstore"
)

type StatusHandler struct {
	store   vectorstore.Store
	docRepo *repository.DocumentRepository
	history *cache.HistoryCache
}

func NewStatusHandler(store vectorstore.Store, docRepo *repository.DocumentRepository, history *cache.HistoryCache) *StatusHandler {
	return &StatusHandler{store: store, docRepo: docRepo, history: history}
}

// SystemStatus reports the vector index statistics.
func (h *StatusHandler) SystemStatus(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, "vector store is unavailable")
		return
	}
	response.OK(c, stats)
}

// ListDocuments returns the upload registry, newest first.
func (h *StatusHandler) ListDocuments(c *gin.Context) {
	docs, err := h.docRepo.ListRecent(parseLimit(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list documents failed")
		return
	}
	response.OK(c, gin.H{"documents": docs})
}

// QAHistory returns recent exchanges from the cache.
func (h *StatusHandler) QAHistory(c *gin.Context) {
	exchanges, err := h.history.Recent(c.Request.Context(), parseLimit(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "read history failed")
		return
	}
	response.OK(c, gin.H{"history": exchanges})
}

func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		return 50
	}
	return limit
}
