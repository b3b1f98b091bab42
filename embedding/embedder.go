package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ollama/ollama/api"
)

const embeddingModel = "nomic-embed-text"

// Embedder turns text into dense vectors. Blank inputs embed to nothing so a
// page with no recognized text never produces a junk vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type OllamaEmbedder struct {
	client *api.Client
}

func NewOllamaEmbedder(client *api.Client) *OllamaEmbedder {
	return &OllamaEmbedder{client: client}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	resp, err := e.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  embeddingModel,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}

	vector := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vector[i] = float32(v)
	}
	return vector, nil
}

// EmbedBatch keeps positions aligned with the input: a blank text yields a nil
// vector at its index rather than shifting the rest.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// CosineSimilarity returns 0 when either vector has zero norm or the
// dimensions disagree, so degenerate embeddings rank last instead of NaN-ing
// the sort.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
