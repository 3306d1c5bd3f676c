package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/davidemeka/ragstore/internal/core"
	"github.com/davidemeka/ragstore/internal/core/errs"
)

// Known output dimensionalities per embedding model. Models missing
// from this map report an unknown dimension (0) and stores skip
// length validation for them.
var modelDims = map[string]int{
	"gemini-embedding-001": 3072,
	"text-embedding-005":   768,
	"text-embedding-004":   768,
}

type GeminiEmbedder struct {
	client    *genai.Client
	modelName string
}

// NewGeminiEmbedder builds the gateway. Both the API key and the model
// name are required; construction fails fast rather than letting a
// half-configured embedder reach the pipeline.
func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", errs.ErrConfig)
	}
	if modelName == "" {
		return nil, fmt.Errorf("%w: embedding model name not set", errs.ErrConfig)
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: create gemini client: %v", errs.ErrConfig, err)
	}
	return &GeminiEmbedder{client: cl, modelName: modelName}, nil
}

func (g *GeminiEmbedder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// EmbedTexts batches all texts in one request, preserving input order
// and count. Empty input returns empty output without a backend call.
// A backend failure is never retried here; retry policy belongs to the
// caller.
func (g *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := g.client.EmbeddingModel(g.modelName)

	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini batch embed: %v", errs.ErrEmbedding, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", errs.ErrEmbedding, len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		out = append(out, e.Values)
	}
	return out, nil
}

// Dimension returns the configured model's output dimensionality, or 0
// when unknown.
func (g *GeminiEmbedder) Dimension() int {
	return modelDims[g.modelName]
}

var _ core.Embedder = (*GeminiEmbedder)(nil)
