package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"pdfqa/internal/ai"
	appsvc "pdfqa/internal/app"
	"pdfqa/internal/cache"
	"pdfqa/internal/config"
	"pdfqa/internal/model"
	"pdfqa/internal/ocr"
	"pdfqa/internal/pkg/chunk"
	"pdfqa/internal/pkg/normalize"
	mysqlClient "pdfqa/internal/platform/mysql"
	rabbitmqClient "pdfqa/internal/platform/rabbitmq"
	redisClient "pdfqa/internal/platform/redis"
	"pdfqa/internal/repository"
	"pdfqa/internal/vectorstore"
	"pdfqa/internal/worker"
)

type App struct {
	Config *config.Config
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection
	Store  *vectorstore.Milvus

	Ingest  *appsvc.IngestService
	Query   *appsvc.QueryService
	History *cache.HistoryCache
	DocRepo *repository.DocumentRepository

	QAWorker *worker.QAPersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Document{}, &model.QAExchange{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	store, err := vectorstore.NewMilvus(ctx, cfg.Milvus.Address, cfg.Milvus.Collection, cfg.LLM.EmbeddingDim)
	if err != nil {
		return nil, err
	}

	chunker, err := chunk.NewChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap, chunk.NewTokenCounter())
	if err != nil {
		return nil, fmt.Errorf("build chunker failed: %w", err)
	}

	tesseract := ocr.NewTesseract(cfg.OCR.TesseractPath, cfg.OCR.Languages)
	var recognizer appsvc.PageRecognizer
	if tesseract.Available() {
		recognizer = ocr.NewRecognizer(tesseract, cfg.OCR.MinWidth)
	} else {
		log.Warn().Str("path", cfg.OCR.TesseractPath).Msg("tesseract not found, OCR fallback disabled")
	}

	llm := appsvc.NewLLM(
		ai.NewOpenAICompatibleClient(),
		ai.EmbeddingConfig{BaseURL: cfg.LLM.BaseURL, APIKey: cfg.LLM.APIKey, Model: cfg.LLM.EmbeddingModel},
		ai.ChatConfig{BaseURL: cfg.LLM.BaseURL, APIKey: cfg.LLM.APIKey, Model: cfg.LLM.Model},
	)

	docRepo := repository.NewDocumentRepository(mysqlDB)
	qaRepo := repository.NewQAExchangeRepository(mysqlDB)
	history := cache.NewHistoryCache(
		redisCli,
		time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
		cfg.Redis.HistoryMaxEntries,
	)
	publisher := rabbitmqClient.NewQAPublisher(mqConn, cfg.RabbitMQ.QAPersistQueue)

	ingest := appsvc.NewIngestService(
		store,
		llm,
		recognizer,
		normalize.Default(),
		chunker,
		docRepo,
		cfg.Ingest.MinPageTextChars,
		cfg.OCR.RenderDPI,
	)
	query := appsvc.NewQueryService(
		store,
		llm,
		llm,
		publisher,
		history,
		cfg.Query.TopK,
		cfg.AnswerTimeout(),
	)

	qaWorker := worker.NewQAPersistWorker(mqConn, qaRepo, cfg.RabbitMQ.QAPersistQueue)
	if err := qaWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start qa persist worker failed: %w", err)
	}

	return &App{
		Config:    cfg,
		MySQL:     mysqlDB,
		Redis:     redisCli,
		MQConn:    mqConn,
		Store:     store,
		Ingest:    ingest,
		Query:     query,
		History:   history,
		DocRepo:   docRepo,
		QAWorker:  qaWorker,
		StartedAt: time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.QAWorker != nil {
		a.QAWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Store != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := a.Store.Close(closeCtx); err != nil {
			closeErr = err
		}
		cancel()
	}
	if a.MySQL != nil {
		if sqlDB, err := a.MySQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
