package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI    string
	DBName      string
	Port        string
	GinMode     string
	CORSOrigins []string

	// Redis Configuration (rate limiting + asynq)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	RateLimitReqs   int
	RateLimitWindow int

	// Gemini providers
	GeminiAPIKey          string
	GeminiModel           string
	GoogleEmbeddingsModel string

	// Chunking
	MaxChunkTokens int // estimated tokens per chunk window

	// Vector index
	VectorBackend    string // "mongo" (Atlas $vectorSearch) or "qdrant"
	VectorIndexName  string
	VectorDimensions int
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	// Retrieval tunables
	RAGMinScore        float64
	RAGTopK            int
	RAGMaxContextChars int

	// Cloudflare Access
	CFAccessTeamDomain string // e.g. "myteam.cloudflareaccess.com"
	CFAccessAudience   string
	AuthDisabled       bool // dev only: trust the authenticated-email header

	// Background reindex sweep
	ReindexIntervalMinutes int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/worknotes"),
		DBName:      getEnv("DB_NAME", "worknotes"),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),

		MaxChunkTokens: getEnvInt("MAX_CHUNK_TOKENS", 400),

		VectorBackend:    getEnv("VECTOR_BACKEND", "mongo"),
		VectorIndexName:  getEnv("VECTOR_INDEX_NAME", "note_chunks_vector"),
		VectorDimensions: getEnvInt("VECTOR_DIM", 768),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:     getEnv("QDRANT_API_KEY", ""),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "note_chunks"),

		RAGMinScore:        getEnvFloat64("RAG_MIN_SCORE", 0.60),
		RAGTopK:            getEnvInt("RAG_TOP_K", 8),
		RAGMaxContextChars: getEnvInt("RAG_MAX_CONTEXT_CHARS", 6000),

		CFAccessTeamDomain: getEnv("CF_ACCESS_TEAM_DOMAIN", ""),
		CFAccessAudience:   getEnv("CF_ACCESS_AUD", ""),
		AuthDisabled:       getEnvBool("AUTH_DISABLED", false),

		ReindexIntervalMinutes: getEnvInt("REINDEX_INTERVAL_MINUTES", 10),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if !cfg.AuthDisabled {
		if cfg.CFAccessTeamDomain == "" || cfg.CFAccessAudience == "" {
			return nil, fmt.Errorf("CF_ACCESS_TEAM_DOMAIN and CF_ACCESS_AUD are required unless AUTH_DISABLED=true")
		}
	}

	switch cfg.VectorBackend {
	case "mongo", "qdrant":
	default:
		return nil, fmt.Errorf("unknown VECTOR_BACKEND: %s", cfg.VectorBackend)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
