package controller

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/itish2003/meetassist/chunker"
	"github/itish2003/meetassist/embeddings"
	"github/itish2003/meetassist/llm"
	"github/itish2003/meetassist/models"
	"github/itish2003/meetassist/services"
	"github/itish2003/meetassist/transcripts"
	"github/itish2003/meetassist/vectorstore"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	embedder := embeddings.NewHashEmbedder(32)
	index, err := vectorstore.Open(filepath.Join(dir, "vectors"), embedder.Dimension())
	require.NoError(t, err)
	store, err := transcripts.Open(filepath.Join(dir, "meetings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc, err := services.NewRAGService(services.Options{
		Chunker:     chunker.NewWindowChunker(500, 50),
		Embedder:    embedder,
		Index:       index,
		Generator:   llm.NewClient(),
		Transcripts: store,
	})
	require.NoError(t, err)

	inbox, err := services.NewUploadInbox(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	ingester := services.NewFileIngester(svc, services.NewExtractor(""))
	return NewRouter(NewRAGController(svc, inbox, ingester))
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, filename, content, meetingID string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if meetingID != "" {
		require.NoError(t, mw.WriteField("meeting_id", meetingID))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcripts/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthAndRequestID(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodOptions, "/api/v1/query", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestIngestTranscript(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body any
		code int
	}{
		{name: "missing meeting id", body: gin.H{"text": "hello"}, code: http.StatusBadRequest},
		{name: "missing text", body: gin.H{"meeting_id": 7}, code: http.StatusBadRequest},
		{name: "whitespace text", body: gin.H{"meeting_id": 7, "text": "   "}, code: http.StatusBadRequest},
		{name: "valid", body: gin.H{"meeting_id": 7, "text": "Alice: we should ship Friday. Bob: agreed."}, code: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/v1/transcripts", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/transcripts?meeting_id=7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list models.GetTranscriptsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	w = doJSON(t, r, http.MethodGet, "/api/v1/transcripts?meeting_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryAndSearch(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/query", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/transcripts", gin.H{"meeting_id": 7, "text": "Alice: we should ship Friday. Bob: agreed."})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/query", gin.H{"query": "What did Alice decide?"})
	require.Equal(t, http.StatusOK, w.Code)
	var answer models.QueryRAGResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &answer))
	assert.True(t, answer.ContextUsed)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, int64(7), answer.Sources[0].Metadata.MeetingID)
	assert.Equal(t, w.Header().Get("X-Request-ID"), answer.RequestID)

	w = doJSON(t, r, http.MethodPost, "/api/v1/search", gin.H{"query": "ship Friday", "top_k": 3})
	require.Equal(t, http.StatusOK, w.Code)
	var search models.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &search))
	assert.Equal(t, 1, search.Count)

	w = doJSON(t, r, http.MethodPost, "/api/v1/search", gin.H{"query": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuery_ErrorAnswerIsStill200(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/query", gin.H{"query": " "})
	require.Equal(t, http.StatusOK, w.Code)
	var answer models.QueryRAGResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &answer))
	assert.Equal(t, models.AssistanceError, answer.AssistanceType)
	assert.Equal(t, "Error occurred during processing", answer.AccuracyVerification)
}

func TestIndexInfoAndReset(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/transcripts", gin.H{"meeting_id": 1, "text": "Standup notes."})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/index", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info models.IndexInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, 1, info.VectorTotal)
	assert.Equal(t, 32, info.Dimension)
	assert.Equal(t, "hash-32", info.EmbeddingModel)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/index", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"vector_total":0`)
}

func TestUploadTranscript(t *testing.T) {
	r := newTestRouter(t)
	vtt := "WEBVTT\n\n1\n00:00:01.000 --> 00:00:02.000\n<v Alice>Ship Friday.\n"

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "retro.vtt", vtt, "12"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp models.IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.IngestedChunks)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "retro.vtt", vtt, "12"))
	assert.Equal(t, http.StatusConflict, w.Code, "same bytes twice")

	w = doJSON(t, r, http.MethodGet, "/api/v1/transcripts?meeting_id=12", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "Alice: Ship Friday."))

	cases := []struct {
		name      string
		filename  string
		meetingID string
	}{
		{name: "unsupported type", filename: "notes.docx", meetingID: "12"},
		{name: "missing meeting id", filename: "notes.txt"},
		{name: "bad meeting id", filename: "notes.txt", meetingID: "-4"},
		{name: "missing file", meetingID: "12"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, uploadRequest(t, tc.filename, "text", tc.meetingID))
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}
