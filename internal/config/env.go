package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	AIAPIKey     string
	EmbedModel   string
	EmbedDim     int
	GenModel     string
	Port         string
	LogLevel     string
	JWTSecret    string

	// Ingestion tuning.
	MaxChunkSize  int // max runes per chunk before sentence-boundary slack
	EmbedBatch    int // chunks embedded per Gemini batch request
	EmbedRetries  int // attempts for transient embedding failures
	IngestWorkers int

	// Retrieval tuning.
	CandidateLimit int // pgvector prefilter size fed to the ranker
	LinkBudget     int // default limit_tokens for new share links
}

// LoadConfig loads the environment variables and returns config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "deckhand-docs"),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:     getEnvInt("EMBED_DIM", 768),
		GenModel:     getEnv("GEN_MODEL", "gemini-1.5-flash"),
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		JWTSecret:    getEnv("JWT_SECRET", ""),

		MaxChunkSize:  getEnvInt("MAX_CHUNK_SIZE", 1000),
		EmbedBatch:    getEnvInt("EMBED_BATCH", 16),
		EmbedRetries:  getEnvInt("EMBED_RETRIES", 3),
		IngestWorkers: getEnvInt("INGEST_WORKERS", 4),

		CandidateLimit: getEnvInt("CANDIDATE_LIMIT", 50),
		LinkBudget:     getEnvInt("LINK_BUDGET", 20000),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Int("default", def).Msg("env var not an int, using default")
		return def
	}
	return n
}
