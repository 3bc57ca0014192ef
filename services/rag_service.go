// Package services wires chunking, embedding, retrieval and generation into
// the meeting assistant operations shared by every front end.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github/itish2003/meetassist/chunker"
	"github/itish2003/meetassist/embeddings"
	"github/itish2003/meetassist/intent"
	"github/itish2003/meetassist/llm"
	"github/itish2003/meetassist/models"
	"github/itish2003/meetassist/prompts"
	"github/itish2003/meetassist/transcripts"
	"github/itish2003/meetassist/verify"
)

const (
	snippetLimit      = 400
	verificationLimit = 200

	answerMaxTokens   = 1000
	answerTemperature = 0.3
)

var (
	ErrEmptyTranscript   = errors.New("transcript text is empty")
	ErrInvalidMeetingID  = errors.New("meeting_id must be positive")
	ErrEmptyQuery        = errors.New("query is empty")
	ErrAlreadyIngested   = errors.New("transcript content already ingested")
	ErrNoTranscriptStore = errors.New("transcript store not configured")
)

// RAGService interface defines methods for RAG operations
type RAGService interface {
	IngestTranscript(ctx context.Context, req models.IngestTranscriptRequest) (*models.IngestResponse, error)
	Answer(ctx context.Context, req models.QueryTextRequest) *models.QueryRAGResponse
	SemanticSearch(ctx context.Context, query string, topK int) ([]models.QueryResult, error)
	GetTotalChunks(ctx context.Context) int
	IndexInfo(ctx context.Context) models.IndexInfoResponse
	ResetIndex(ctx context.Context) error
	ListTranscripts(ctx context.Context, meetingID int64) (*models.GetTranscriptsResponse, error)
}

// VectorIndex is the append-only nearest-neighbour store behind the service.
type VectorIndex interface {
	Add(vectors [][]float32, metadata []models.ChunkRecord) error
	Search(query []float32, topK int) ([]models.QueryResult, error)
	Reset() error
	Count() int
	Dimension() int
}

// TranscriptRepository keeps the full text of every ingested transcript.
type TranscriptRepository interface {
	Save(ctx context.Context, t *models.Transcript, raw string) error
	List(ctx context.Context, meetingID int64) ([]models.Transcript, error)
	HasContentHash(ctx context.Context, hash string) (bool, error)
}

// Generator produces text for a prompt and never fails.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) string
}

// Options are the dependencies of the RAG service. Transcripts and Mirror
// are optional.
type Options struct {
	Chunker     chunker.Chunker
	Embedder    embeddings.Service
	Index       VectorIndex
	Classifier  *intent.Classifier
	Generator   Generator
	Transcripts TranscriptRepository
	Mirror      IndexMirror
	DefaultTopK int
}

// ragServiceImpl holds the dependencies it needs to do its job
type ragServiceImpl struct {
	chunker     chunker.Chunker
	embedder    embeddings.Service
	index       VectorIndex
	classifier  *intent.Classifier
	gen         Generator
	verifier    *verify.Verifier
	transcripts TranscriptRepository
	mirror      IndexMirror
	topK        int

	hashes *hashGate
}

// NewRAGService wires the pipeline. The embedder and the index must agree on
// the vector dimension.
func NewRAGService(opts Options) (RAGService, error) {
	if opts.Embedder == nil || opts.Index == nil || opts.Generator == nil {
		return nil, fmt.Errorf("embedder, index and generator are required")
	}
	if opts.Embedder.Dimension() != opts.Index.Dimension() {
		return nil, fmt.Errorf("embedding model %s produces %d-dimensional vectors but the index holds %d",
			opts.Embedder.Model(), opts.Embedder.Dimension(), opts.Index.Dimension())
	}
	if opts.Chunker == nil {
		opts.Chunker = chunker.NewWindowChunker(chunker.DefaultSize, chunker.DefaultOverlap)
	}
	if opts.Classifier == nil {
		opts.Classifier = intent.NewDefaultClassifier()
	}
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = 5
	}

	return &ragServiceImpl{
		chunker:     opts.Chunker,
		embedder:    opts.Embedder,
		index:       opts.Index,
		classifier:  opts.Classifier,
		gen:         opts.Generator,
		verifier:    verify.New(opts.Generator),
		transcripts: opts.Transcripts,
		mirror:      opts.Mirror,
		topK:        opts.DefaultTopK,
		hashes:      newHashGate(),
	}, nil
}

// IngestTranscript chunks, embeds and appends one transcript, then records it
// in the transcript store. Vectors are appended before the row is written, so
// a stored content hash always has vectors behind it. Once the append
// succeeds the call succeeds: the index cannot take chunks back, so a failed
// row write is logged and the hash is remembered in memory instead.
//
// Requests carrying the same content hash are serialized; the second one sees
// the first one's result.
func (r *ragServiceImpl) IngestTranscript(ctx context.Context, req models.IngestTranscriptRequest) (*models.IngestResponse, error) {
	if req.MeetingID <= 0 {
		return nil, ErrInvalidMeetingID
	}

	if req.ContentHash != "" {
		release, err := r.hashes.acquire(ctx, req.ContentHash)
		if err != nil {
			return nil, err
		}
		defer release()

		if r.hashes.indexed(req.ContentHash) {
			return nil, ErrAlreadyIngested
		}
		if r.transcripts != nil {
			seen, err := r.transcripts.HasContentHash(ctx, req.ContentHash)
			if err != nil {
				return nil, fmt.Errorf("failed to check content hash: %w", err)
			}
			if seen {
				return nil, ErrAlreadyIngested
			}
		}
	}

	fullText := req.Text
	if req.TranscriptFormat == transcripts.FormatCaptionsJSON {
		formatted, err := transcripts.FormatCaptions([]byte(req.Text))
		if err != nil {
			return nil, err
		}
		fullText = formatted
	}
	if chunker.CleanText(fullText) == "" {
		return nil, ErrEmptyTranscript
	}

	chunks := r.chunker.Chunk(fullText)
	log.Printf("SERVICE: Split meeting %d into %d chunks.", req.MeetingID, len(chunks))

	vectors, err := r.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks for meeting %d: %w", req.MeetingID, err)
	}

	now := time.Now().UTC()
	records := make([]models.ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = models.ChunkRecord{
			MeetingID:   req.MeetingID,
			ChunkIndex:  i,
			TextSnippet: prompts.Truncate(chunk, snippetLimit),
			CreatedAt:   now,
		}
	}
	if err := r.index.Add(vectors, records); err != nil {
		return nil, fmt.Errorf("failed to add chunks to index: %w", err)
	}
	if req.ContentHash != "" {
		r.hashes.markIndexed(req.ContentHash)
	}

	resp := &models.IngestResponse{IngestedChunks: len(chunks), VectorTotal: r.index.Count()}

	if r.transcripts != nil {
		t := &models.Transcript{
			MeetingID:        req.MeetingID,
			FullText:         fullText,
			SourcePlatform:   req.SourcePlatform,
			TranscriptFormat: req.TranscriptFormat,
			ContentHash:      req.ContentHash,
			CreatedAt:        now,
		}
		if err := r.transcripts.Save(ctx, t, req.Text); err != nil {
			log.Printf("SERVICE WARN: Meeting %d indexed but transcript row not saved: %v", req.MeetingID, err)
		} else {
			resp.TranscriptID = t.ID
		}
	}

	if r.mirror != nil {
		if err := r.mirror.Mirror(ctx, records, chunks, vectors); err != nil {
			log.Printf("SERVICE WARN: Chroma mirror failed for meeting %d: %v", req.MeetingID, err)
		}
	}

	log.Printf("SERVICE: Ingested meeting %d (%d chunks, %d vectors total).", req.MeetingID, len(chunks), resp.VectorTotal)
	return resp, nil
}

// SemanticSearch embeds query and returns its nearest chunks.
func (r *ragServiceImpl) SemanticSearch(ctx context.Context, query string, topK int) ([]models.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = r.topK
	}
	vec, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	results, err := r.index.Search(vec, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}
	return results, nil
}

// Answer runs classify, retrieve, build, generate and verify. It never fails:
// every error is folded into an error-shaped response.
func (r *ragServiceImpl) Answer(ctx context.Context, req models.QueryTextRequest) (resp *models.QueryRAGResponse) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("SERVICE ERROR: panic while answering %q: %v", req.Query, p)
			resp = errorResponse(fmt.Errorf("%v", p))
		}
	}()

	resp, err := r.answer(ctx, req)
	if err != nil {
		log.Printf("SERVICE ERROR: Failed to answer %q: %v", req.Query, err)
		return errorResponse(err)
	}
	return resp
}

func (r *ragServiceImpl) answer(ctx context.Context, req models.QueryTextRequest) (*models.QueryRAGResponse, error) {
	analysis := r.classifier.Classify(req.Query)
	log.Printf("SERVICE: Query intent %s (confidence %.2f).", analysis.PrimaryIntent, analysis.Confidence)

	chunks, err := r.SemanticSearch(ctx, req.Query, req.TopK)
	if err != nil {
		return nil, err
	}

	p := prompts.Build(req.Query, analysis, chunks)
	answer := r.gen.Generate(ctx, llm.Request{
		Prompt:      p.Text,
		System:      p.System,
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
	})

	feedback := verify.WaivedStatus
	verdict := models.VerdictWaived
	if analysis.PrimaryIntent != models.IntentHypotheticalScenario {
		res := r.verifier.Verify(ctx, req.Query, answer, chunks)
		feedback, verdict = res.Feedback, res.Verdict
		if res.NeedsCorrection {
			log.Printf("SERVICE: Verification returned %s, regenerating answer.", res.Verdict)
			answer = r.verifier.Correct(ctx, req.Query, answer, res.Feedback)
		}
	}

	return &models.QueryRAGResponse{
		Answer:               answer,
		Sources:              chunks,
		ContextUsed:          len(chunks) > 0,
		AssistanceType:       p.AssistanceType,
		IntentAnalysis:       analysis,
		AccuracyVerification: shortenFeedback(feedback),
		VerificationVerdict:  verdict,
	}, nil
}

func shortenFeedback(s string) string {
	if len([]rune(s)) <= verificationLimit {
		return s
	}
	return prompts.Truncate(s, verificationLimit) + "..."
}

func errorResponse(err error) *models.QueryRAGResponse {
	return &models.QueryRAGResponse{
		Answer:               fmt.Sprintf("I encountered an error while processing your request: %v. Please try again.", err),
		Sources:              []models.QueryResult{},
		ContextUsed:          false,
		AssistanceType:       models.AssistanceError,
		IntentAnalysis:       models.IntentAnalysis{},
		AccuracyVerification: "Error occurred during processing",
	}
}

// GetTotalChunks returns the number of vectors in the index.
func (r *ragServiceImpl) GetTotalChunks(_ context.Context) int {
	return r.index.Count()
}

func (r *ragServiceImpl) IndexInfo(_ context.Context) models.IndexInfoResponse {
	return models.IndexInfoResponse{
		VectorTotal:    r.index.Count(),
		Dimension:      r.index.Dimension(),
		EmbeddingModel: r.embedder.Model(),
	}
}

// ResetIndex empties the local index and, best effort, the mirror.
func (r *ragServiceImpl) ResetIndex(ctx context.Context) error {
	if err := r.index.Reset(); err != nil {
		return fmt.Errorf("failed to reset index: %w", err)
	}
	r.hashes.forgetIndexed()
	if r.mirror != nil {
		if err := r.mirror.Reset(ctx); err != nil {
			log.Printf("SERVICE WARN: Failed to reset Chroma mirror: %v", err)
		}
	}
	log.Println("SERVICE: Index reset.")
	return nil
}

func (r *ragServiceImpl) ListTranscripts(ctx context.Context, meetingID int64) (*models.GetTranscriptsResponse, error) {
	if r.transcripts == nil {
		return nil, ErrNoTranscriptStore
	}
	list, err := r.transcripts.List(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	return &models.GetTranscriptsResponse{Count: len(list), Transcripts: list}, nil
}

// hashGate serializes ingestion per content hash and remembers which hashes
// reached the index during this process.
type hashGate struct {
	mu       sync.Mutex
	inflight map[string]chan struct{}
	done     map[string]struct{}
}

func newHashGate() *hashGate {
	return &hashGate{
		inflight: make(map[string]chan struct{}),
		done:     make(map[string]struct{}),
	}
}

// acquire blocks until no other ingest holds hash, or ctx ends.
func (g *hashGate) acquire(ctx context.Context, hash string) (func(), error) {
	g.mu.Lock()
	for {
		wait, busy := g.inflight[hash]
		if !busy {
			break
		}
		g.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		g.mu.Lock()
	}
	ch := make(chan struct{})
	g.inflight[hash] = ch
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.inflight, hash)
		g.mu.Unlock()
		close(ch)
	}, nil
}

func (g *hashGate) indexed(hash string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.done[hash]
	return ok
}

func (g *hashGate) markIndexed(hash string) {
	g.mu.Lock()
	g.done[hash] = struct{}{}
	g.mu.Unlock()
}

func (g *hashGate) forgetIndexed() {
	g.mu.Lock()
	g.done = make(map[string]struct{})
	g.mu.Unlock()
}
