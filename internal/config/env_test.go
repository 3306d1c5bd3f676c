package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidemeka/ragstore/internal/core/errs"
)

// unsetenv clears key for the duration of the test, restoring the
// original value afterwards.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"ENV", "PORT", "MAX_CHUNK_SIZE", "CHUNK_OVERLAP", "GEMINI_API_KEY",
		"AWS_ACCESS_KEY", "AWS_SECRET_KEY", "AWS_REGION", "RAG_BUCKET_NAME",
		"HOT_STORE_PATH", "DATABASE_URL", "INGEST_WORKERS",
	} {
		unsetenv(t, key)
	}
	t.Setenv("EMBEDDING_MODEL_NAME", "gemini-embedding-001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 500, cfg.MaxChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.Equal(t, "gemini-embedding-001", cfg.EmbedModel)
	assert.Equal(t, "us-east-2", cfg.AwsRegion)
	assert.Equal(t, "./hot_store.db", cfg.HotStorePath)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 1, cfg.IngestWorkers)
	assert.False(t, cfg.RemoteEnabled())
}

func TestLoad_RequiresEmbeddingModel(t *testing.T) {
	unsetenv(t, "EMBEDDING_MODEL_NAME")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConfig)
}

func TestLoad_RejectsOverlapNotSmallerThanChunkSize(t *testing.T) {
	t.Setenv("EMBEDDING_MODEL_NAME", "gemini-embedding-001")
	t.Setenv("MAX_CHUNK_SIZE", "100")
	t.Setenv("CHUNK_OVERLAP", "100")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConfig)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("EMBEDDING_MODEL_NAME", "text-embedding-004")
	t.Setenv("MAX_CHUNK_SIZE", "300")
	t.Setenv("CHUNK_OVERLAP", "30")
	t.Setenv("INGEST_WORKERS", "8")
	t.Setenv("AWS_ACCESS_KEY", "AKIA")
	t.Setenv("AWS_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.MaxChunkSize)
	assert.Equal(t, 30, cfg.ChunkOverlap)
	assert.Equal(t, 8, cfg.IngestWorkers)
	assert.True(t, cfg.RemoteEnabled())
}

func TestLoad_MalformedIntFallsBackToDefault(t *testing.T) {
	t.Setenv("EMBEDDING_MODEL_NAME", "gemini-embedding-001")
	t.Setenv("MAX_CHUNK_SIZE", "not-a-number")
	unsetenv(t, "CHUNK_OVERLAP")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.MaxChunkSize)
}
