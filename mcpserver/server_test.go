package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/itish2003/meetassist/embeddings"
	"github/itish2003/meetassist/llm"
	"github/itish2003/meetassist/services"
	"github/itish2003/meetassist/vectorstore"
)

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	embedder := embeddings.NewHashEmbedder(32)
	index, err := vectorstore.Open(filepath.Join(t.TempDir(), "vectors"), embedder.Dimension())
	require.NoError(t, err)
	rag, err := services.NewRAGService(services.Options{
		Embedder:  embedder,
		Index:     index,
		Generator: llm.NewClient(),
	})
	require.NoError(t, err)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := New(rag, "test").Build().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func callTool[T any](t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (T, *mcp.CallToolResult) {
	t.Helper()
	var out T
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if res.IsError {
		return out, res
	}
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out, res
}

func TestListTools(t *testing.T) {
	cs := connect(t)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"meeting_answer", "meeting_search", "meeting_ingest", "index_stats"}, names)
}

func TestIngestSearchAnswer(t *testing.T) {
	cs := connect(t)

	ingested, _ := callTool[IngestOutput](t, cs, "meeting_ingest", map[string]any{
		"meeting_id": 7,
		"text":       "Alice: we should ship Friday. Bob: agreed.",
	})
	assert.Equal(t, 1, ingested.IngestedChunks)
	assert.Equal(t, 1, ingested.VectorTotal)

	stats, _ := callTool[StatsOutput](t, cs, "index_stats", map[string]any{})
	assert.Equal(t, 1, stats.VectorTotal)
	assert.Equal(t, 32, stats.Dimension)
	assert.Equal(t, "hash-32", stats.EmbeddingModel)

	search, _ := callTool[SearchOutput](t, cs, "meeting_search", map[string]any{"query": "ship Friday"})
	require.Equal(t, 1, search.Count)
	assert.Equal(t, int64(7), search.Results[0].MeetingID)
	assert.Equal(t, "[meeting:7 chunk:0]", search.Results[0].Citation)

	answer, _ := callTool[AnswerOutput](t, cs, "meeting_answer", map[string]any{"query": "What if our vendor doubles prices?"})
	assert.Equal(t, "hypothetical_scenario", answer.PrimaryIntent)
	assert.Equal(t, "Hypothetical scenario - accuracy check waived", answer.AccuracyVerification)
	assert.NotEmpty(t, answer.Answer)
}

func TestToolErrors(t *testing.T) {
	cs := connect(t)

	_, res := callTool[IngestOutput](t, cs, "meeting_ingest", map[string]any{"meeting_id": 0, "text": "x"})
	assert.True(t, res.IsError)

	_, res = callTool[SearchOutput](t, cs, "meeting_search", map[string]any{"query": ""})
	assert.True(t, res.IsError)

	_, res = callTool[AnswerOutput](t, cs, "meeting_answer", map[string]any{"query": "  "})
	assert.True(t, res.IsError)
}
