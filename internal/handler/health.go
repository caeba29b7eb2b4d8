package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root reports the service name and version. Health responses are plain
// objects, not wrapped in the envelope.
func Root(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "FinTrack API",
			"status":  "healthy",
			"version": version,
		})
	}
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
