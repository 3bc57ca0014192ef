package embeddings

import (
	"context"
	"fmt"
	"log"
	"net/http"

	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaEmbedder embeds through a local Ollama server using langchaingo.
type OllamaEmbedder struct {
	embedder *lcembeddings.EmbedderImpl
	model    string
	dim      int
}

// NewOllamaEmbedder connects to baseURL and embeds a probe string to learn the
// model's output dimension.
func NewOllamaEmbedder(ctx context.Context, baseURL, model string, batchSize int, hc *http.Client) (*OllamaEmbedder, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if baseURL != "" {
		opts = append(opts, ollama.WithServerURL(baseURL))
	}
	if hc != nil {
		opts = append(opts, ollama.WithHTTPClient(hc))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	if batchSize <= 0 {
		batchSize = 32
	}
	embedder, err := lcembeddings.NewEmbedder(llm, lcembeddings.WithBatchSize(batchSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama embedder: %w", err)
	}

	probe, err := embedder.EmbedQuery(ctx, "dimension probe")
	if err != nil {
		return nil, fmt.Errorf("failed to probe ollama embedding model %s: %w", model, err)
	}
	if len(probe) == 0 {
		return nil, fmt.Errorf("ollama embedding model %s returned an empty vector", model)
	}
	log.Printf("EMBEDDINGS: Using ollama model %s (dimension %d)", model, len(probe))

	return &OllamaEmbedder{embedder: embedder, model: model, dim: len(probe)}, nil
}

func (o *OllamaEmbedder) Dimension() int { return o.dim }

func (o *OllamaEmbedder) Model() string { return o.model }

func (o *OllamaEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := o.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text with ollama: %w", err)
	}
	if len(vec) != o.dim {
		return nil, fmt.Errorf("ollama returned dimension %d, expected %d", len(vec), o.dim)
	}
	return vec, nil
}

func (o *OllamaEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := o.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d texts with ollama: %w", len(texts), err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d texts", len(vectors), len(texts))
	}
	if err := checkDimensions(vectors, o.dim); err != nil {
		return nil, err
	}
	return vectors, nil
}
