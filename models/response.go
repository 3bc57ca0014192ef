package models

type IngestResponse struct {
	IngestedChunks int   `json:"ingested_chunks"`
	VectorTotal    int   `json:"vector_total"`
	TranscriptID   int64 `json:"transcript_id,omitempty"`
}

// QueryRAGResponse is the structured answer returned for a query.
type QueryRAGResponse struct {
	Answer               string         `json:"answer"`
	Sources              []QueryResult  `json:"sources"`
	ContextUsed          bool           `json:"context_used"`
	AssistanceType       AssistanceType `json:"assistance_type"`
	IntentAnalysis       IntentAnalysis `json:"intent_analysis"`
	AccuracyVerification string         `json:"accuracy_verification"`
	VerificationVerdict  Verdict        `json:"verification_verdict,omitempty"`
	RequestID            string         `json:"request_id,omitempty"`
}

type SearchResponse struct {
	Query   string        `json:"query"`
	Count   int           `json:"count"`
	Results []QueryResult `json:"results"`
}

// IndexInfoResponse describes the vector index currently loaded.
type IndexInfoResponse struct {
	VectorTotal    int    `json:"vector_total"`
	Dimension      int    `json:"dimension"`
	EmbeddingModel string `json:"embedding_model"`
}

type GetTranscriptsResponse struct {
	Count       int          `json:"count"`
	Transcripts []Transcript `json:"transcripts"`
}
