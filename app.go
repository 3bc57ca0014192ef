package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github/itish2003/meetassist/chunker"
	"github/itish2003/meetassist/config"
	"github/itish2003/meetassist/embeddings"
	"github/itish2003/meetassist/intent"
	"github/itish2003/meetassist/llm"
	"github/itish2003/meetassist/services"
	"github/itish2003/meetassist/transcripts"
	"github/itish2003/meetassist/vectorstore"
)

// app holds the components every subcommand shares. They are built once per
// process and injected; nothing is kept in package globals.
type app struct {
	cfg         *config.Config
	rag         services.RAGService
	index       *vectorstore.Store
	transcripts *transcripts.Store
	mirror      *services.ChromaMirror
	extractor   *services.Extractor
	ingester    *services.FileIngester
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	httpClient := &http.Client{
		Timeout: 2 * time.Minute,
	}

	embedder, err := embeddings.New(ctx, cfg.Embedding, cfg.LLM.OpenAI.APIKey, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	log.Printf("EMBEDDINGS: Using %s (%d dimensions).", embedder.Model(), embedder.Dimension())

	index, err := vectorstore.Open(cfg.Storage.VectorDir, embedder.Dimension())
	if err != nil {
		return nil, fmt.Errorf("failed to open vector index: %w", err)
	}
	log.Printf("STORE: Loaded %d vectors from %s.", index.Count(), cfg.Storage.VectorDir)

	store, err := transcripts.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript database: %w", err)
	}

	a := &app{cfg: cfg, index: index, transcripts: store}

	var mirror services.IndexMirror
	if cfg.Chroma.URL != "" {
		m, err := services.NewChromaMirror(ctx, cfg.Chroma.URL, cfg.Chroma.Collection)
		if err != nil {
			log.Printf("CHROMA WARN: Mirror disabled: %v", err)
		} else {
			a.mirror = m
			mirror = m
			if n, err := m.Count(ctx); err == nil {
				log.Printf("CHROMA: Collection '%s' holds %d documents.", cfg.Chroma.Collection, n)
			}
		}
	}

	rag, err := services.NewRAGService(services.Options{
		Chunker: chunker.New(chunker.Config{
			Size:     cfg.Chunking.Size,
			Overlap:  *cfg.Chunking.Overlap,
			Strategy: cfg.Chunking.Strategy,
		}),
		Embedder:    embedder,
		Index:       index,
		Classifier:  intent.NewDefaultClassifier(),
		Generator:   llm.NewClientFromConfig(ctx, cfg.LLM, httpClient),
		Transcripts: store,
		Mirror:      mirror,
		DefaultTopK: cfg.Retrieval.TopK,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	a.rag = rag
	a.extractor = services.NewExtractor(cfg.PDF.UnidocLicenseKey)
	a.ingester = services.NewFileIngester(rag, a.extractor)
	return a, nil
}

func (a *app) close() {
	if a.mirror != nil {
		if err := a.mirror.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}
	if err := a.transcripts.Close(); err != nil {
		log.Printf("Warning: Failed to close transcript database: %v", err)
	}
}
