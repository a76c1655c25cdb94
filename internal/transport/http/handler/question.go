package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdfqa/internal/app"
	"pdfqa/internal/transport/http/response"
)

type QuestionHandler struct {
	service *app.QueryService
}

type AskQuestionRequest struct {
	Question string `json:"question" binding:"required"`
}

func NewQuestionHandler(service *app.QueryService) *QuestionHandler {
	return &QuestionHandler{service: service}
}

func (h *QuestionHandler) AskQuestion(c *gin.Context) {
	var req AskQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "question field is required")
		return
	}

	result, err := h.service.Ask(c.Request.Context(), app.AskInput{Question: req.Question})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "question must not be empty")
		case errors.Is(err, app.ErrAnswerTimeout):
			response.Error(c, http.StatusGatewayTimeout, "answer generation timed out")
		case errors.Is(err, app.ErrStorageUnavailable):
			response.Error(c, http.StatusServiceUnavailable, "vector store is unavailable")
		case errors.Is(err, app.ErrServiceUnavailable):
			response.Error(c, http.StatusServiceUnavailable, "language model service is unavailable")
		default:
			response.Error(c, http.StatusInternalServerError, "question answering failed")
		}
		return
	}

	response.OK(c, result)
}
