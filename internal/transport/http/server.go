package http

import (
	"github.com/gin-gonic/gin"

	"pdfqa/internal/bootstrap"
	"pdfqa/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = app.Config.Ingest.MaxPDFSizeBytes

	healthHandler := handler.NewHealthHandler(app)
	ingestHandler := handler.NewIngestHandler(app.Ingest, app.Config.Ingest.MaxPDFSizeBytes)
	questionHandler := handler.NewQuestionHandler(app.Query)
	statusHandler := handler.NewStatusHandler(app.Store, app.DocRepo, app.History)

	router.StaticFile("/", "web/index.html")
	router.GET("/healthz", healthHandler.Check)

	router.POST("/upload-pdf", ingestHandler.UploadPDF)
	router.POST("/ask-question", questionHandler.AskQuestion)
	router.GET("/system-status", statusHandler.SystemStatus)
	router.GET("/documents", statusHandler.ListDocuments)
	router.GET("/qa-history", statusHandler.QAHistory)

	return router
}
