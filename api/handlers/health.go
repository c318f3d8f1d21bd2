package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/customeros/mailvault/interfaces"
)

// HealthCheck provides a simple health check endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Status reports the outcome of the most recent processing run
func Status(runRepository interfaces.ProcessingRunRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		run, err := runRepository.GetLatest(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if run == nil {
			c.JSON(http.StatusOK, gin.H{"status": "no runs recorded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    run.Status.String(),
			"lastRun":   run.CompletedAt,
			"processed": run.ProcessedAttachments,
			"failed":    run.FailedAttachments,
		})
	}
}
