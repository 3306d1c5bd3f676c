package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/davidemeka/ragstore/internal/core/errs"
)

type Config struct {
	Env           string
	Port          string
	MaxChunkSize  int
	ChunkOverlap  int
	EmbedModel    string
	GeminiAPIKey  string
	AwsAccessKey  string
	AwsSecretKey  string
	AwsRegion     string
	BucketName    string
	HotStorePath  string
	DatabaseURL   string // empty disables the cold tier
	IngestWorkers int
}

// Load reads the environment (and an optional .env file) into a Config.
// Missing required keys fail here, before any component is built.
func Load() (*Config, error) {

	_ = godotenv.Load()

	cfg := &Config{
		Env:           getEnv("ENV", "local"),
		Port:          getEnv("PORT", "8080"),
		MaxChunkSize:  getEnvInt("MAX_CHUNK_SIZE", 500),
		ChunkOverlap:  getEnvInt("CHUNK_OVERLAP", 50),
		EmbedModel:    getEnv("EMBEDDING_MODEL_NAME", ""),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		AwsAccessKey:  getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:  getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:     getEnv("AWS_REGION", "us-east-2"),
		BucketName:    getEnv("RAG_BUCKET_NAME", ""),
		HotStorePath:  getEnv("HOT_STORE_PATH", "./hot_store.db"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		IngestWorkers: getEnvInt("INGEST_WORKERS", 1),
	}

	if cfg.EmbedModel == "" {
		return nil, fmt.Errorf("%w: EMBEDDING_MODEL_NAME not set", errs.ErrConfig)
	}
	if cfg.ChunkOverlap >= cfg.MaxChunkSize {
		return nil, fmt.Errorf("%w: CHUNK_OVERLAP (%d) must be smaller than MAX_CHUNK_SIZE (%d)",
			errs.ErrConfig, cfg.ChunkOverlap, cfg.MaxChunkSize)
	}

	return cfg, nil
}

// RemoteEnabled reports whether S3-backed references can be served.
func (c *Config) RemoteEnabled() bool {
	return c.AwsAccessKey != "" && c.AwsSecretKey != ""
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
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
