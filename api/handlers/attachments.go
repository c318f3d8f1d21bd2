package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/customeros/mailvault/interfaces"
	"github.com/customeros/mailvault/internal/tracing"
	"github.com/customeros/mailvault/internal/utils"
)

// ListAttachments returns archived attachment records, newest first
func ListAttachments(records interfaces.AttachmentRecordRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListAttachments", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		limit, offset := pagination(c)

		items, total, err := records.List(ctx, limit, offset)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"attachments": items,
			"total":       total,
		})
	}
}

// GetAttachment returns one archived attachment record
func GetAttachment(records interfaces.AttachmentRecordRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GetAttachment", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		id := c.Param("id")
		tracing.TagEntity(span, id)

		record, err := records.GetByID(ctx, id)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if record == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "attachment not found"})
			return
		}

		c.JSON(http.StatusOK, record)
	}
}

// DownloadAttachment streams the archived payload back to the caller
func DownloadAttachment(records interfaces.AttachmentRecordRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "DownloadAttachment", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		id := c.Param("id")
		tracing.TagEntity(span, id)

		record, err := records.GetByID(ctx, id)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if record == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "attachment not found"})
			return
		}

		data, err := records.GetData(ctx, id)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		contentType := record.ContentType
		if contentType == "" {
			contentType = utils.DefaultContentType
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Filename))
		c.Data(http.StatusOK, contentType, data)
	}
}
