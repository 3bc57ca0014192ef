package mcpserver

// AnswerInput defines inputs for the meeting_answer MCP tool.
type AnswerInput struct {
	Query string `json:"query" jsonschema:"question about past meetings or a request for guidance"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of transcript chunks to retrieve (default from config)"`
}

// SourceItem is a retrieved chunk with an RFC 3339 timestamp.
type SourceItem struct {
	MeetingID  int64   `json:"meeting_id"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float32 `json:"score"`
	Snippet    string  `json:"snippet"`
	CreatedAt  string  `json:"created_at"`
	Citation   string  `json:"citation"`
}

// AnswerOutput is the output for meeting_answer.
type AnswerOutput struct {
	Answer               string         `json:"answer"`
	AssistanceType       string         `json:"assistance_type"`
	PrimaryIntent        string         `json:"primary_intent,omitempty"`
	Confidence           float64        `json:"confidence,omitempty"`
	IntentWeights        map[string]int `json:"intent_weights,omitempty"`
	ContextUsed          bool           `json:"context_used"`
	AccuracyVerification string         `json:"accuracy_verification"`
	Verdict              string         `json:"verdict,omitempty"`
	Sources              []SourceItem   `json:"sources"`
}

// SearchInput defines inputs for the meeting_search MCP tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to find similar transcript chunks for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of results to return"`
}

// SearchOutput is the output for meeting_search.
type SearchOutput struct {
	Query   string       `json:"query"`
	Count   int          `json:"count"`
	Results []SourceItem `json:"results"`
}

// IngestInput defines inputs for the meeting_ingest MCP tool.
type IngestInput struct {
	MeetingID        int64  `json:"meeting_id" jsonschema:"positive meeting identifier"`
	Text             string `json:"text" jsonschema:"transcript text, or a caption JSON array when transcript_format is captions_json"`
	SourcePlatform   string `json:"source_platform,omitempty" jsonschema:"where the transcript came from (zoom, google_meet, ...)"`
	TranscriptFormat string `json:"transcript_format,omitempty" jsonschema:"captions_json for caption arrays, empty for plain text"`
}

// IngestOutput is the output for meeting_ingest.
type IngestOutput struct {
	IngestedChunks int   `json:"ingested_chunks"`
	VectorTotal    int   `json:"vector_total"`
	TranscriptID   int64 `json:"transcript_id,omitempty"`
}

// StatsInput is empty; index_stats takes no arguments.
type StatsInput struct{}

// StatsOutput is the output for index_stats.
type StatsOutput struct {
	VectorTotal    int    `json:"vector_total"`
	Dimension      int    `json:"dimension"`
	EmbeddingModel string `json:"embedding_model"`
}
