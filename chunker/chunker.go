// Package chunker turns raw transcript text into bounded, overlapping windows.
package chunker

import (
	"log"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Chunker splits text into an ordered list of chunks. Implementations must be
// deterministic because the chunk index is used as a citation key.
type Chunker interface {
	Chunk(text string) []string
}

// Config selects a strategy and its window parameters.
type Config struct {
	Size     int
	Overlap  int
	Strategy string // "window" (default) or "recursive"
}

// New returns the chunker for cfg.Strategy, falling back to the window chunker.
func New(cfg Config) Chunker {
	if cfg.Strategy == "recursive" {
		return NewRecursiveChunker(cfg.Size, cfg.Overlap)
	}
	return NewWindowChunker(cfg.Size, cfg.Overlap)
}

// CleanText trims s and collapses every whitespace run into a single space.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WindowChunker slides a fixed-size character window across the cleaned text.
type WindowChunker struct {
	size    int
	overlap int
}

// NewWindowChunker creates a window chunker. Non-positive sizes and negative
// overlaps are replaced by the defaults.
func NewWindowChunker(size, overlap int) *WindowChunker {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	return &WindowChunker{size: size, overlap: overlap}
}

// Chunk implements Chunker. Lengths are counted in characters, not bytes.
func (w *WindowChunker) Chunk(text string) []string {
	runes := []rune(CleanText(text))
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= w.size {
		return []string{string(runes)}
	}

	// overlap >= size would never advance
	stride := max(w.size-w.overlap, 1)

	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := min(start+w.size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// RecursiveChunker splits on paragraph, line and word boundaries using the
// langchaingo recursive character splitter.
type RecursiveChunker struct {
	splitter textsplitter.RecursiveCharacter
	fallback *WindowChunker
}

func NewRecursiveChunker(size, overlap int) *RecursiveChunker {
	fallback := NewWindowChunker(size, overlap)
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(fallback.size),
		textsplitter.WithChunkOverlap(min(fallback.overlap, fallback.size-1)),
	)
	return &RecursiveChunker{splitter: splitter, fallback: fallback}
}

// Chunk implements Chunker.
func (r *RecursiveChunker) Chunk(text string) []string {
	cleaned := CleanText(text)
	if cleaned == "" {
		return nil
	}
	chunks, err := r.splitter.SplitText(cleaned)
	if err != nil {
		log.Printf("CHUNKER WARN: recursive split failed, using window chunks: %v", err)
		return r.fallback.Chunk(cleaned)
	}

	out := chunks[:0]
	for _, c := range chunks {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
