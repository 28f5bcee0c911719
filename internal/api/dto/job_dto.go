package dto

import (
	"time"

	"github.com/minhvt/vision-jobs/internal/jobs"
)

// SubmitJobRequest is the batch submission payload.
type SubmitJobRequest struct {
	ImageURLs []string       `json:"imageUrls" binding:"required"`
	UserID    string         `json:"userId"`
	Metadata  map[string]any `json:"metadata"`
}

// SubmitJobResponse acknowledges an accepted submission.
type SubmitJobResponse struct {
	JobID      string `json:"jobId"`
	Status     string `json:"status"`
	ImageCount int    `json:"imageCount"`
	Message    string `json:"message"`
}

// ListJobsRequest holds listing filters and pagination parameters.
type ListJobsRequest struct {
	UserID   string `form:"user_id"`
	Status   string `form:"status"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

// ListJobsResponse is one page of jobs.
type ListJobsResponse struct {
	Jobs       []JobSummary `json:"jobs"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// JobSummary is the listing projection of a job (no detections payload).
type JobSummary struct {
	JobID      string `json:"jobId"`
	UserID     string `json:"userId,omitempty"`
	Status     string `json:"status"`
	ImageCount int    `json:"imageCount"`
	Message    string `json:"message,omitempty"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// PresignUploadRequest asks for an upload slot.
type PresignUploadRequest struct {
	Filename string `json:"filename"`
}

// NewJobSummary projects a job into its listing shape.
func NewJobSummary(job *jobs.Job) JobSummary {
	return JobSummary{
		JobID:      job.JobID,
		UserID:     job.UserID,
		Status:     job.Status,
		ImageCount: job.ImageCount,
		Message:    job.Message,
		CreatedAt:  job.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  job.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
