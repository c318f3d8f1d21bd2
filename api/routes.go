package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/mailvault/api/handlers"
	"github.com/customeros/mailvault/api/middleware"
	"github.com/customeros/mailvault/internal/repository"
	"github.com/customeros/mailvault/internal/tracing"
	"github.com/customeros/mailvault/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, s *services.Services, repos *repository.Repositories, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())                                         // Gin's built-in recovery
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer())) // Our custom Jaeger recovery

	// Health check and status endpoints
	r.GET("/health", handlers.HealthCheck)
	r.GET("/status", handlers.Status(repos.ProcessingRunRepository))

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-MAILVAULT-API-KEY",
		ValidAPIKey: apikey,
	})

	// API group with version
	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	api.Use(middleware.TracingMiddleware()) // Add tracing for all /v1/* endpoints
	{
		// Processing run endpoints
		runs := api.Group("/runs")
		{
			runs.POST("", handlers.TriggerRun(s.BatchProcessor))
			runs.GET("", handlers.ListRuns(repos.ProcessingRunRepository))
			runs.GET("/latest", handlers.GetLatestRun(repos.ProcessingRunRepository))
			runs.GET("/:id", handlers.GetRun(repos.ProcessingRunRepository))
		}

		// Archived attachment endpoints
		attachments := api.Group("/attachments")
		{
			attachments.GET("", handlers.ListAttachments(repos.AttachmentRecordRepository))
			attachments.GET("/:id", handlers.GetAttachment(repos.AttachmentRecordRepository))
			attachments.GET("/:id/content", handlers.DownloadAttachment(repos.AttachmentRecordRepository))
		}
	}
}
