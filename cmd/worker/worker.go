package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	"worknote-platform/internal/ai"
	"worknote-platform/internal/config"
	"worknote-platform/internal/logger"
	"worknote-platform/internal/queue"
	"worknote-platform/internal/telemetry"
	"worknote-platform/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.DBName)

	ctx := context.Background()
	embedder, err := ai.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GoogleEmbeddingsModel)
	if err != nil {
		log.Fatal("Failed to init embedder:", err)
	}
	defer embedder.Close()

	var index services.VectorIndex
	switch cfg.VectorBackend {
	case "qdrant":
		qdrant := services.NewQdrantVectorIndex(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection)
		if err := qdrant.EnsureCollection(ctx, cfg.VectorDimensions); err != nil {
			log.Fatal("Failed to prepare Qdrant collection:", err)
		}
		index = qdrant
	default:
		index = services.NewMongoVectorIndex(db, cfg.VectorIndexName)
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	chunker := services.NewChunker(cfg.MaxChunkTokens)
	indexer := services.NewNoteIndexer(chunker, embedder, index, db)
	processor := queue.NewTaskProcessor(indexer, metrics)

	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIndexNote, processor.HandleIndexNote)
	mux.HandleFunc(queue.TaskDeindexNote, processor.HandleDeindexNote)

	logger.Info("worker starting", "redis", cfg.RedisURL, "vector_backend", cfg.VectorBackend)
	if err := server.Run(mux); err != nil {
		log.Fatal("Worker failed:", err)
	}
}
