package jobs

import (
	"context"
	"fmt"
)

// StatusReader projects job records into client-facing status views.
type StatusReader struct {
	store Store
}

// NewStatusReader creates a new StatusReader instance
func NewStatusReader(store Store) *StatusReader {
	return &StatusReader{store: store}
}

// GetStatus returns the status view for jobID, or ErrJobNotFound if no record
// exists. Detections is never nil so clients always see an array.
func (r *StatusReader) GetStatus(ctx context.Context, jobID string) (*StatusView, error) {
	job, err := r.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	detections := job.Detections
	if detections == nil {
		detections = []ImageResult{}
	}

	return &StatusView{
		JobID:      job.JobID,
		Status:     job.Status,
		ImageCount: job.ImageCount,
		Detections: detections,
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
		Message:    job.Message,
	}, nil
}

// ListJobs returns jobs matching filter plus a cursor for the next page when
// more results exist.
func (r *StatusReader) ListJobs(ctx context.Context, filter ListFilter) ([]Job, *ListCursor, error) {
	jobs, err := r.store.List(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	// The store fetches one extra row to signal another page.
	if filter.PageSize > 0 && len(jobs) > filter.PageSize {
		jobs = jobs[:filter.PageSize]
		last := jobs[len(jobs)-1]
		return jobs, &ListCursor{CreatedAt: last.CreatedAt, JobID: last.JobID}, nil
	}

	return jobs, nil, nil
}
