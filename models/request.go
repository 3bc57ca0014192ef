package models

// IngestTranscriptRequest is the payload for ingesting one meeting transcript.
type IngestTranscriptRequest struct {
	MeetingID        int64  `json:"meeting_id" binding:"required,gt=0"`
	Text             string `json:"text" binding:"required"`
	SourcePlatform   string `json:"source_platform,omitempty"`
	TranscriptFormat string `json:"transcript_format,omitempty"`
	// ContentHash is set by file-based ingestion so unchanged files are skipped.
	ContentHash string `json:"-"`
}

type QueryTextRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k,omitempty"`
}

type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k,omitempty"`
}
