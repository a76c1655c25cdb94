package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"pdfqa/internal/app"
	"pdfqa/internal/transport/http/response"
)

type IngestHandler struct {
	service    *app.IngestService
	maxPDFSize int64
}

func NewIngestHandler(service *app.IngestService, maxPDFSize int64) *IngestHandler {
	if maxPDFSize <= 0 {
		maxPDFSize = 20 << 20
	}
	return &IngestHandler{service: service, maxPDFSize: maxPDFSize}
}

// UploadPDF accepts a multipart PDF, stages it on local disk, and runs the
// ingestion pipeline over it.
func (h *IngestHandler) UploadPDF(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "file field is required")
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		response.Error(c, http.StatusBadRequest, "Only PDF files are supported")
		return
	}
	if fileHeader.Size > h.maxPDFSize {
		response.Error(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("PDF exceeds the %d MB size limit", h.maxPDFSize>>20))
		return
	}

	tmp, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "could not stage uploaded file")
		return
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		response.Error(c, http.StatusInternalServerError, "could not save uploaded file")
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), app.IngestInput{
		Path:     tmpPath,
		Filename: fileHeader.Filename,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "invalid upload")
		case errors.Is(err, app.ErrUnreadableDocument):
			response.Error(c, http.StatusBadRequest, "could not extract any text from the PDF, even with OCR")
		case errors.Is(err, app.ErrEmptyDocument):
			response.Error(c, http.StatusBadRequest, "the PDF produced no content to index")
		case errors.Is(err, app.ErrStorageUnavailable):
			response.Error(c, http.StatusServiceUnavailable, "vector store is unavailable")
		case errors.Is(err, app.ErrServiceUnavailable):
			response.Error(c, http.StatusServiceUnavailable, "embedding service is unavailable")
		default:
			response.Error(c, http.StatusInternalServerError, "PDF processing failed")
		}
		return
	}

	response.OK(c, result)
}
