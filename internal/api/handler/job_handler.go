package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minhvt/vision-jobs/internal/api/dto"
	"github.com/minhvt/vision-jobs/internal/jobs"
	"github.com/minhvt/vision-jobs/internal/metrics"
)

// SubmitJob handles POST /api/v1/jobs
// Accepts a batch of image locators and enqueues a detection job.
func (h *JobHandler) SubmitJob(c *gin.Context) {
	var req dto.SubmitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	job, err := h.submitter.Submit(c.Request.Context(), req.ImageURLs, req.UserID, req.Metadata)
	if err != nil {
		if errors.Is(err, jobs.ErrNoImages) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "imageUrls must contain at least one entry",
			})
			return
		}

		h.logger.Error("Failed to submit job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to submit job",
		})
		return
	}

	metrics.JobsSubmitted.Inc()

	// 202: the job is queued, detection happens asynchronously.
	c.JSON(http.StatusAccepted, dto.SubmitJobResponse{
		JobID:      job.JobID,
		Status:     job.Status,
		ImageCount: job.ImageCount,
		Message:    "Job submitted for processing",
	})
}

// GetJobStatus handles GET /api/v1/jobs/:job_id
// Returns the current status and any accumulated detection results.
func (h *JobHandler) GetJobStatus(c *gin.Context) {
	jobID := c.Param("job_id")

	if _, err := uuid.Parse(jobID); err != nil {
		h.logger.Error("Invalid job_id format",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id must be a valid UUID",
		})
		return
	}

	view, err := h.statusReader.GetStatus(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Job not found",
			})
			return
		}

		h.logger.Error("Failed to get job status",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get job status",
		})
		return
	}

	c.JSON(http.StatusOK, view)
}

// ListJobs handles GET /api/v1/jobs
// Lists jobs with optional filtering and cursor pagination.
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		h.logger.Error("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	filter := jobs.ListFilter{
		UserID:   req.UserID,
		Status:   req.Status,
		PageSize: req.PageSize,
		Cursor:   cursor,
	}

	page, nextCursor, err := h.statusReader.ListJobs(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list jobs",
		})
		return
	}

	summaries := make([]dto.JobSummary, len(page))
	for i := range page {
		summaries[i] = dto.NewJobSummary(&page[i])
	}

	var encodedCursor string
	if nextCursor != nil {
		encodedCursor = EncodeJobCursor(nextCursor)
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{
		Jobs:       summaries,
		NextCursor: encodedCursor,
	})
}
