// Package vectorstore is an append-only, exact-search L2 index with one
// metadata record per vector. The position of a vector is its id.
package vectorstore

import (
	"cmp"
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"sync"

	"github/itish2003/meetassist/models"
)

var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrLengthMismatch    = errors.New("vectors and metadata differ in length")
	ErrDesynchronized    = errors.New("index and metadata are out of sync")
)

// Store keeps vectors and metadata in memory and mirrors every change to
// index.bin and metadata.json in its directory. A single RWMutex covers
// both, so readers never see one without the other.
type Store struct {
	mu      sync.RWMutex
	dir     string
	dim     int
	vectors []float32 // row-major, len == dim*len(meta)
	meta    []models.ChunkRecord
}

// Open loads the store persisted in dir, or starts an empty one if dir holds
// neither file. A persisted dimension other than dim is an error.
func Open(dir string, dim int) (*Store, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dim)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	s := &Store{dir: dir, dim: dim}
	vectors, meta, storedDim, err := load(dir)
	switch {
	case errors.Is(err, errNoIndex):
		log.Printf("STORE: No index found in %s, starting empty (dimension %d)", dir, dim)
		return s, nil
	case err != nil:
		return nil, err
	}

	if storedDim != dim {
		return nil, fmt.Errorf("%w: index in %s has dimension %d, embedder produces %d",
			ErrDimensionMismatch, dir, storedDim, dim)
	}
	s.vectors = vectors
	s.meta = meta
	log.Printf("STORE: Loaded %d vectors (dimension %d) from %s", len(meta), dim, dir)
	return s, nil
}

// Add appends vectors and their metadata. Both files are rewritten before the
// in-memory state changes, so a failed write leaves the store as it was.
func (s *Store) Add(vectors [][]float32, metadata []models.ChunkRecord) error {
	if len(vectors) != len(metadata) {
		return fmt.Errorf("%w: %d vectors, %d metadata records", ErrLengthMismatch, len(vectors), len(metadata))
	}
	if len(vectors) == 0 {
		return nil
	}
	for i, v := range vectors {
		if len(v) != s.dim {
			return fmt.Errorf("%w: vector %d has dimension %d, index expects %d", ErrDimensionMismatch, i, len(v), s.dim)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextVectors := make([]float32, len(s.vectors), len(s.vectors)+len(vectors)*s.dim)
	copy(nextVectors, s.vectors)
	for _, v := range vectors {
		nextVectors = append(nextVectors, v...)
	}
	nextMeta := slices.Concat(s.meta, metadata)

	if err := save(s.dir, s.dim, nextVectors, nextMeta); err != nil {
		return fmt.Errorf("failed to persist index: %w", err)
	}
	s.vectors = nextVectors
	s.meta = nextMeta
	return nil
}

// Search returns the topK nearest vectors by squared L2 distance, closest
// first, ties broken by id.
func (s *Store) Search(query []float32, topK int) ([]models.QueryResult, error) {
	if len(query) != s.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d", ErrDimensionMismatch, len(query), s.dim)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.meta)
	if topK <= 0 || n == 0 {
		return []models.QueryResult{}, nil
	}

	results := make([]models.QueryResult, 0, n)
	for id := 0; id < n; id++ {
		row := s.vectors[id*s.dim : (id+1)*s.dim]
		results = append(results, models.QueryResult{Score: squaredL2(query, row), ID: id})
	}
	slices.SortFunc(results, func(a, b models.QueryResult) int {
		if c := cmp.Compare(a.Score, b.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	results = results[:min(topK, n)]
	for i := range results {
		results[i].Metadata = s.meta[results[i].ID]
	}
	return results, nil
}

// Reset empties the store, keeping its dimension.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := save(s.dir, s.dim, nil, []models.ChunkRecord{}); err != nil {
		return fmt.Errorf("failed to persist empty index: %w", err)
	}
	s.vectors = nil
	s.meta = nil
	log.Printf("STORE: Index in %s reset", s.dir)
	return nil
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meta)
}

func (s *Store) Dimension() int { return s.dim }

// Metadata returns a copy of the record stored for id.
func (s *Store) Metadata(id int) (models.ChunkRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 0 || id >= len(s.meta) {
		return models.ChunkRecord{}, false
	}
	return s.meta[id], true
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
