package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/customeros/mailvault/interfaces"
	"github.com/customeros/mailvault/internal/models"
	"github.com/customeros/mailvault/internal/tracing"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TriggerRun executes a single batch run and returns its outcome. The
// scheduled path owns retries, a manual trigger gets one attempt.
func TriggerRun(processor interfaces.BatchProcessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "TriggerRun", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		summary, err := processor.ProcessBatch(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.NewProcessingRun(summary))
	}
}

// ListRuns returns recorded processing runs, newest first
func ListRuns(runRepository interfaces.ProcessingRunRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListRuns", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		limit, offset := pagination(c)

		runs, total, err := runRepository.List(ctx, limit, offset)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"runs":  runs,
			"total": total,
		})
	}
}

// GetLatestRun returns the most recent processing run
func GetLatestRun(runRepository interfaces.ProcessingRunRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GetLatestRun", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		run, err := runRepository.GetLatest(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if run == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no processing runs recorded"})
			return
		}

		c.JSON(http.StatusOK, run)
	}
}

// GetRun returns one processing run by id
func GetRun(runRepository interfaces.ProcessingRunRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GetRun", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		id := c.Param("id")
		tracing.TagEntity(span, id)

		run, err := runRepository.GetByID(ctx, id)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if run == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "processing run not found"})
			return
		}

		c.JSON(http.StatusOK, run)
	}
}

func pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return limit, offset
}
