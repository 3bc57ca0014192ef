package transcripts

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/itish2003/meetassist/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "meetings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := &models.Transcript{MeetingID: 7, FullText: "Alice: we should ship Friday. Bob: agreed.", SourcePlatform: "zoom"}
	require.NoError(t, s.Save(ctx, first, first.FullText))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &models.Transcript{
		MeetingID:        8,
		FullText:         "[00:01] Carol: hello",
		TranscriptFormat: FormatCaptionsJSON,
		ContentHash:      "abc123",
		CreatedAt:        time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC),
	}
	require.NoError(t, s.Save(ctx, second, `[{"speaker":"Carol","text":"hello","timestamp":"00:01"}]`))

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(7), all[0].MeetingID)
	assert.Equal(t, "zoom", all[0].SourcePlatform)
	assert.Equal(t, FormatCaptionsJSON, all[1].TranscriptFormat)
	assert.Equal(t, "abc123", all[1].ContentHash)
	assert.True(t, all[1].CreatedAt.Equal(second.CreatedAt))

	only7, err := s.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, only7, 1)
	assert.Equal(t, first.ID, only7[0].ID)

	none, err := s.List(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}

func TestHasContentHash(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	found, err := s.HasContentHash(ctx, "deadbeef")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Save(ctx, &models.Transcript{MeetingID: 1, FullText: "x", ContentHash: "deadbeef"}, "x"))

	found, err = s.HasContentHash(ctx, "deadbeef")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.HasContentHash(ctx, "")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meetings.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), &models.Transcript{MeetingID: 3, FullText: "kept"}, "kept"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.List(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0].FullText)
}

func TestFormatCaptions(t *testing.T) {
	raw := []byte(`[
		{"speaker": "Alice", "text": "we should ship Friday", "timestamp": "10:00"},
		{"speaker": "Live Captions", "text": "captions on", "timestamp": "10:00"},
		{"speaker": "person_add", "text": "Bob joined", "timestamp": "10:01"},
		{"speaker": "Bob", "text": "   ", "timestamp": "10:01"},
		{"speaker": "Bob", "text": "agreed", "timestamp": "10:02"}
	]`)

	got, err := FormatCaptions(raw)
	require.NoError(t, err)
	assert.Equal(t, "[10:00] Alice: we should ship Friday\n[10:02] Bob: agreed", got)

	_, err = FormatCaptions([]byte("not json"))
	assert.Error(t, err)
}
