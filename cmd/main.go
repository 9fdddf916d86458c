package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"worknote-platform/internal/ai"
	"worknote-platform/internal/auth"
	"worknote-platform/internal/config"
	"worknote-platform/internal/logger"
	"worknote-platform/internal/queue"
	"worknote-platform/internal/telemetry"
	"worknote-platform/middleware"
	"worknote-platform/routes"
	"worknote-platform/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	shutdownTracer, err := telemetry.InitTracer("worknote-platform")
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	} else {
		defer shutdownTracer()
	}
	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	db := mongoClient.Database(cfg.DBName)

	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	taskClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer taskClient.Close()

	ctx := context.Background()
	embedder, err := ai.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GoogleEmbeddingsModel)
	if err != nil {
		log.Fatal("Failed to init embedder:", err)
	}
	defer embedder.Close()

	generator, err := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal("Failed to init Gemini client:", err)
	}
	defer generator.Close()

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

	store := services.NewMongoNoteStore(db)
	retriever := services.NewSimilarityRetriever(embedder, index, store)
	rag := services.NewRAGService(retriever, generator, cfg.RAGMinScore, cfg.RAGTopK, cfg.RAGMaxContextChars)
	minuteSearch := services.NewMinuteSearch(db)
	exporter := services.NewExportService(db)

	sweeper := services.NewReindexSweeper(db, func(noteID string) error {
		task, err := queue.NewNoteIndexTask(noteID)
		if err != nil {
			return err
		}
		_, err = taskClient.Enqueue(task)
		return err
	})
	if err := sweeper.Start(cfg.ReindexIntervalMinutes); err != nil {
		logger.Warn("reindex sweeper not started", "error", err)
	}
	defer sweeper.Stop()

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC()})
	})

	verifier := auth.NewCloudflareVerifier(cfg.CFAccessTeamDomain, cfg.CFAccessAudience)
	router.Use(middleware.AccessAuthMiddleware(verifier, cfg))

	routes.SetupRAGRoutes(router, cfg, rag, retriever, store)
	routes.SetupMinuteRoutes(router, minuteSearch)
	routes.SetupDirectoryRoutes(router, db)
	routes.SetupNoteRoutes(router, db, taskClient, exporter)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "vector_backend", cfg.VectorBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("server exited")
}
