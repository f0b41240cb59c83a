package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/GhefinIndra/EduVate/internal/ai"
	"github.com/GhefinIndra/EduVate/internal/app"
	"github.com/GhefinIndra/EduVate/internal/chunker"
	"github.com/GhefinIndra/EduVate/internal/config"
	"github.com/GhefinIndra/EduVate/internal/index"
	"github.com/GhefinIndra/EduVate/internal/model"
	mysqlClient "github.com/GhefinIndra/EduVate/internal/platform/mysql"
	rabbitmqClient "github.com/GhefinIndra/EduVate/internal/platform/rabbitmq"
	redisClient "github.com/GhefinIndra/EduVate/internal/platform/redis"
	"github.com/GhefinIndra/EduVate/internal/repository"
	"github.com/GhefinIndra/EduVate/internal/worker"
)

// App wires the shared infrastructure: storage, cache, broker, the chunk
// index and the ingestion worker. HTTP-facing services are assembled by
// the router on top of these.
type App struct {
	Config          *config.Config
	MySQL           *gorm.DB
	Redis           *redis.Client
	MQConn          *amqp.Connection
	Index           *index.Index
	IngestPublisher *rabbitmqClient.IngestPublisher
	IngestWorker    *worker.IngestWorker

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
	if err := mysqlDB.AutoMigrate(
		&model.Topic{},
		&model.Document{},
		&model.Chunk{},
		&model.ChatSession{},
		&model.Message{},
	); err != nil {
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

	llmClient := ai.NewOpenAICompatibleClient()
	embedder := ai.NewEmbedder(llmClient, ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
	}, cfg.LLM.EmbeddingDimension)

	chunkRepo := repository.NewChunkRepository(mysqlDB)
	chunkIndex := index.New(chunkRepo, embedder)

	docRepo := repository.NewDocumentRepository(mysqlDB)
	ingestor := app.NewIngestor(docRepo, chunkIndex, chunker.Config{
		Size:    cfg.RAG.ChunkSize,
		Overlap: cfg.RAG.ChunkOverlap,
	})

	ingestWorker := worker.NewIngestWorker(mqConn, ingestor, cfg.RabbitMQ.IngestQueue, cfg.RabbitMQ.IngestPrefetch)
	if err := ingestWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start ingest worker failed: %w", err)
	}

	return &App{
		Config:          cfg,
		MySQL:           mysqlDB,
		Redis:           redisCli,
		MQConn:          mqConn,
		Index:           chunkIndex,
		IngestPublisher: rabbitmqClient.NewIngestPublisher(mqConn, cfg.RabbitMQ.IngestQueue),
		IngestWorker:    ingestWorker,
		StartedAt:       time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.IngestWorker != nil {
		a.IngestWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
