package handler

import (
	"context"
	"log/slog"

	"github.com/minhvt/vision-jobs/internal/blob"
	"github.com/minhvt/vision-jobs/internal/jobs"
)

// UploadPresigner issues time-limited upload URLs.
type UploadPresigner interface {
	PresignUpload(ctx context.Context, filename string) (*blob.PresignedUpload, error)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger       *slog.Logger
	Submitter    *jobs.Submitter
	StatusReader *jobs.StatusReader
	Uploads      UploadPresigner
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger       *slog.Logger
	submitter    *jobs.Submitter
	statusReader *jobs.StatusReader
	uploads      UploadPresigner
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:       deps.Logger,
		submitter:    deps.Submitter,
		statusReader: deps.StatusReader,
		uploads:      deps.Uploads,
	}
}
