// Package embeddings turns chunk and query text into fixed-size float32 vectors.
package embeddings

import (
	"context"
	"fmt"
	"net/http"

	"github/itish2003/meetassist/config"
)

// Service is the embedding backend shared by ingestion and retrieval. It is
// stateless and safe for concurrent use.
type Service interface {
	// EmbedTexts returns one vector per input text, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedText(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	Model() string
}

// New builds the embedder selected by cfg.Provider. Remote providers are
// probed once so the dimension is known before the vector store is opened.
func New(ctx context.Context, cfg config.EmbeddingConfig, openAIKey string, hc *http.Client) (Service, error) {
	switch cfg.Provider {
	case "hash":
		return NewHashEmbedder(cfg.Dimensions), nil
	case "ollama", "":
		return NewOllamaEmbedder(ctx, cfg.BaseURL, cfg.Model, cfg.BatchSize, hc)
	case "openai":
		key := cfg.APIKey
		if key == "" {
			key = openAIKey
		}
		return NewOpenAIEmbedder(ctx, OpenAIOptions{
			APIKey:     key,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			BatchSize:  cfg.BatchSize,
			HTTPClient: hc,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

func checkDimensions(vectors [][]float32, want int) error {
	for i, v := range vectors {
		if len(v) != want {
			return fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(v), want)
		}
	}
	return nil
}
