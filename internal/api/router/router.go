package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minhvt/vision-jobs/internal/api/handler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "detection-api-service",
		})
	})

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Initialize job handler
	jobHandler := handler.NewJobHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			// POST /api/v1/jobs - Submit a detection batch
			jobs.POST("", jobHandler.SubmitJob)

			// GET /api/v1/jobs - List jobs with filtering and pagination
			jobs.GET("", jobHandler.ListJobs)

			// GET /api/v1/jobs/:job_id - Get job status and results
			jobs.GET("/:job_id", jobHandler.GetJobStatus)
		}

		uploads := v1.Group("/uploads")
		{
			// POST /api/v1/uploads/presign - Issue a presigned upload URL
			uploads.POST("/presign", jobHandler.PresignUpload)
		}
	}

	return r
}
