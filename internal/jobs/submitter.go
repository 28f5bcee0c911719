package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Submitter validates batch requests, persists the job record, and enqueues
// exactly one work message per submission.
type Submitter struct {
	store  Store
	queue  Publisher
	logger *slog.Logger
}

// NewSubmitter creates a new Submitter instance
func NewSubmitter(store Store, queue Publisher, logger *slog.Logger) *Submitter {
	return &Submitter{
		store:  store,
		queue:  queue,
		logger: logger,
	}
}

// Submit creates a PENDING job for imageURLs and enqueues a work message
// carrying a snapshot of the inputs. The job record is persisted before the
// message is published, so a worker dequeuing immediately always finds it.
// No image is read or processed here.
func (s *Submitter) Submit(ctx context.Context, imageURLs []string, userID string, metadata map[string]any) (*Job, error) {
	if len(imageURLs) == 0 {
		return nil, ErrNoImages
	}

	now := time.Now().UTC()
	job := &Job{
		JobID:      uuid.New().String(),
		UserID:     userID,
		Status:     StatusPending,
		ImageURLs:  imageURLs,
		ImageCount: len(imageURLs),
		Metadata:   metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job record: %w", err)
	}

	msg := &WorkMessage{
		JobID:     job.JobID,
		ImageURLs: imageURLs,
		UserID:    userID,
		Metadata:  metadata,
	}

	if err := s.queue.PublishWorkMessage(ctx, msg); err != nil {
		// The job record exists but no message was enqueued; surface the
		// failure so the caller can resubmit.
		s.logger.Error("Failed to enqueue work message",
			slog.String("job_id", job.JobID),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to enqueue work message: %w", err)
	}

	s.logger.Info("Job submitted",
		slog.String("job_id", job.JobID),
		slog.Int("image_count", job.ImageCount),
	)

	return job, nil
}
