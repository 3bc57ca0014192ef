// Package mcpserver exposes the meeting assistant over the Model Context
// Protocol on stdio.
package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github/itish2003/meetassist/models"
	"github/itish2003/meetassist/prompts"
	"github/itish2003/meetassist/services"
)

// Server wraps the RAG service as MCP tools.
type Server struct {
	rag     services.RAGService
	version string
}

func New(rag services.RAGService, version string) *Server {
	return &Server{rag: rag, version: version}
}

// Build registers every tool on a fresh MCP server.
func (s *Server) Build() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "meetassist",
		Title:   "Meeting Assistant",
		Version: s.version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name: "meeting_answer",
		Description: `Answer a question using ingested meeting transcripts.

The query is classified (technical guidance, decision support, meeting specific,
general knowledge, hypothetical scenario), relevant transcript chunks are
retrieved, and the generated answer is fact-checked against them. Hypothetical
questions skip the fact check.`,
	}, s.answerTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "meeting_search",
		Description: "Find the transcript chunks closest to a query, nearest first.",
	}, s.searchTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "meeting_ingest",
		Description: "Add a meeting transcript to the index. Ingesting the same text twice stores it twice.",
	}, s.ingestTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_stats",
		Description: "Report the number of indexed chunks, the vector dimension and the embedding model.",
	}, s.statsTool)

	return server
}

// Run starts the MCP stdio server.
func (s *Server) Run(ctx context.Context) error {
	return s.Build().Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) answerTool(ctx context.Context, _ *mcp.CallToolRequest, input AnswerInput) (*mcp.CallToolResult, AnswerOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, AnswerOutput{}, fmt.Errorf("query is required")
	}

	resp := s.rag.Answer(ctx, models.QueryTextRequest{Query: input.Query, TopK: input.TopK})
	out := AnswerOutput{
		Answer:               resp.Answer,
		AssistanceType:       string(resp.AssistanceType),
		PrimaryIntent:        string(resp.IntentAnalysis.PrimaryIntent),
		Confidence:           resp.IntentAnalysis.Confidence,
		ContextUsed:          resp.ContextUsed,
		AccuracyVerification: resp.AccuracyVerification,
		Verdict:              string(resp.VerificationVerdict),
		Sources:              mapResults(resp.Sources),
	}
	if len(resp.IntentAnalysis.AllWeights) > 0 {
		out.IntentWeights = make(map[string]int, len(resp.IntentAnalysis.AllWeights))
		for intent, w := range resp.IntentAnalysis.AllWeights {
			out.IntentWeights[string(intent)] = w
		}
	}
	return nil, out, nil
}

func (s *Server) searchTool(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, fmt.Errorf("query is required")
	}
	results, err := s.rag.SemanticSearch(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, SearchOutput{Query: input.Query, Count: len(results), Results: mapResults(results)}, nil
}

func (s *Server) ingestTool(ctx context.Context, _ *mcp.CallToolRequest, input IngestInput) (*mcp.CallToolResult, IngestOutput, error) {
	if input.MeetingID <= 0 {
		return nil, IngestOutput{}, fmt.Errorf("meeting_id must be positive")
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, IngestOutput{}, fmt.Errorf("text is required")
	}
	resp, err := s.rag.IngestTranscript(ctx, models.IngestTranscriptRequest{
		MeetingID:        input.MeetingID,
		Text:             input.Text,
		SourcePlatform:   input.SourcePlatform,
		TranscriptFormat: input.TranscriptFormat,
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, IngestOutput{
		IngestedChunks: resp.IngestedChunks,
		VectorTotal:    resp.VectorTotal,
		TranscriptID:   resp.TranscriptID,
	}, nil
}

func (s *Server) statsTool(ctx context.Context, _ *mcp.CallToolRequest, _ StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
	info := s.rag.IndexInfo(ctx)
	return nil, StatsOutput{
		VectorTotal:    info.VectorTotal,
		Dimension:      info.Dimension,
		EmbeddingModel: info.EmbeddingModel,
	}, nil
}

func mapResults(results []models.QueryResult) []SourceItem {
	items := make([]SourceItem, 0, len(results))
	for _, r := range results {
		items = append(items, SourceItem{
			MeetingID:  r.Metadata.MeetingID,
			ChunkIndex: r.Metadata.ChunkIndex,
			Score:      r.Score,
			Snippet:    r.Metadata.TextSnippet,
			CreatedAt:  r.Metadata.CreatedAt.Format(time.RFC3339),
			Citation:   prompts.CitationHeader(r.Metadata),
		})
	}
	return items
}
