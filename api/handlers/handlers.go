package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"podforge/pipeline"
	"podforge/repositories"
	"podforge/services"
)

// writeError maps service/pipeline errors onto the HTTP status contract:
// validation 400, unknown id 404, quota 429, everything upstream or
// persistence related 500 with the failing step identified.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
	case errors.Is(err, pipeline.ErrMissingTopic),
		errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrInvalidStatKind),
		errors.Is(err, repositories.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, pipeline.ErrQuotaExhausted):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	default:
		var upstream *pipeline.UpstreamError
		if errors.As(err, &upstream) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to generate podcast",
				"step":    string(upstream.Step),
				"details": upstream.Err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
