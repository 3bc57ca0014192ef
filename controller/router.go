package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// NewRouter builds the Gin engine with every API route registered.
func NewRouter(ragController *RAGController) *gin.Engine {
	router := gin.Default()
	router.Use(requestID(), cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Meeting Assistant API",
			"version": "1.0.0",
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/transcripts", ragController.IngestTranscript)
		apiV1.POST("/transcripts/upload", ragController.UploadTranscript)
		apiV1.GET("/transcripts", ragController.GetTranscripts)
		apiV1.POST("/query", ragController.Query)
		apiV1.POST("/search", ragController.Search)
		apiV1.GET("/index", ragController.GetIndex)
		apiV1.DELETE("/index", ragController.ResetIndex)
	}
	return router
}

// requestID reuses the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
