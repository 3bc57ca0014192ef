package controller

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github/itish2003/meetassist/models"
	"github/itish2003/meetassist/services"
)

// RAGController handles the HTTP requests for the meeting assistant API. It
// depends on the RAGService to perform the actual business logic.
type RAGController struct {
	ragService services.RAGService
	inbox      *services.UploadInbox
	ingester   *services.FileIngester
}

// NewRAGController creates a controller. inbox and ingester may be nil, in
// which case uploads are rejected.
func NewRAGController(service services.RAGService, inbox *services.UploadInbox, ingester *services.FileIngester) *RAGController {
	return &RAGController{
		ragService: service,
		inbox:      inbox,
		ingester:   ingester,
	}
}

// IngestTranscript is the Gin handler for POST /api/v1/transcripts.
func (c *RAGController) IngestTranscript(ctx *gin.Context) {
	var req models.IngestTranscriptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	resp, err := c.ragService.IngestTranscript(ctx.Request.Context(), req)
	if err != nil {
		c.ingestError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// UploadTranscript is the Gin handler for POST /api/v1/transcripts/upload.
// It expects a multipart "file" and a "meeting_id" form field.
func (c *RAGController) UploadTranscript(ctx *gin.Context) {
	if c.inbox == nil || c.ingester == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Uploads are not enabled"})
		return
	}

	meetingID, err := strconv.ParseInt(ctx.PostForm("meeting_id"), 10, 64)
	if err != nil || meetingID <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "meeting_id must be a positive integer"})
		return
	}
	header, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing file: " + err.Error()})
		return
	}
	f, err := header.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file: " + err.Error()})
		return
	}
	defer f.Close()

	path, err := c.inbox.Save(header.Filename, f)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFile) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("CONTROLLER ERROR: Failed to store upload %s: %v", header.Filename, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		return
	}

	platform := ctx.DefaultPostForm("source_platform", "upload")
	resp, err := c.ingester.Ingest(ctx.Request.Context(), path, meetingID, platform)
	if err != nil {
		c.ingestError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

func (c *RAGController) ingestError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidMeetingID), errors.Is(err, services.ErrEmptyTranscript):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyIngested):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("CONTROLLER ERROR: Ingestion failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest transcript: " + err.Error()})
	}
}

// GetTranscripts is the Gin handler for GET /api/v1/transcripts.
func (c *RAGController) GetTranscripts(ctx *gin.Context) {
	var meetingID int64
	if raw := ctx.Query("meeting_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "meeting_id must be a non-negative integer"})
			return
		}
		meetingID = id
	}

	response, err := c.ragService.ListTranscripts(ctx.Request.Context(), meetingID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transcripts"})
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// Query is the Gin handler for POST /api/v1/query. Once the body is valid the
// answer is always a 200, error answers included.
func (c *RAGController) Query(ctx *gin.Context) {
	var req models.QueryTextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	response := c.ragService.Answer(ctx.Request.Context(), req)
	response.RequestID = ctx.GetString(requestIDKey)
	ctx.JSON(http.StatusOK, response)
}

// Search is the Gin handler for POST /api/v1/search.
func (c *RAGController) Search(ctx *gin.Context) {
	var req models.SearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	results, err := c.ragService.SemanticSearch(ctx.Request.Context(), req.Query, req.TopK)
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuery) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed: " + err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, models.SearchResponse{Query: req.Query, Count: len(results), Results: results})
}

// GetIndex is the Gin handler for GET /api/v1/index.
func (c *RAGController) GetIndex(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.ragService.IndexInfo(ctx.Request.Context()))
}

// ResetIndex is the Gin handler for DELETE /api/v1/index.
func (c *RAGController) ResetIndex(ctx *gin.Context) {
	if err := c.ragService.ResetIndex(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset index"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Index reset", "vector_total": c.ragService.GetTotalChunks(ctx.Request.Context())})
}
