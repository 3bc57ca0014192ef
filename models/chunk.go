package models

import "time"

// ChunkRecord is the metadata stored next to each vector in the index. Its
// position in the metadata list is the same as its vector's position.
type ChunkRecord struct {
	MeetingID   int64     `json:"meeting_id"`
	ChunkIndex  int       `json:"chunk_index"`
	TextSnippet string    `json:"text_snippet"`
	CreatedAt   time.Time `json:"created_at"`
}

// QueryResult is a single nearest-neighbour hit. Score is the squared L2
// distance, so lower means closer.
type QueryResult struct {
	Score    float32     `json:"score"`
	ID       int         `json:"id"`
	Metadata ChunkRecord `json:"metadata"`
}

// Transcript is a stored meeting transcript row.
type Transcript struct {
	ID               int64     `json:"id"`
	MeetingID        int64     `json:"meeting_id"`
	FullText         string    `json:"full_text"`
	SourcePlatform   string    `json:"source_platform,omitempty"`
	TranscriptFormat string    `json:"transcript_format,omitempty"`
	ContentHash      string    `json:"content_hash,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
