package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/minhvt/vision-jobs/internal/jobs"
	"github.com/minhvt/vision-jobs/internal/metrics"
)

// processJob runs one detection batch. A nil return means the job reached a
// durable terminal state (or already had one) and the message can be acked;
// any error leaves the message for NACK handling in the pool loop.
func (w *Worker) processJob(ctx context.Context, msg *jobs.WorkMessage) error {
	w.logger.Info("Processing job",
		slog.String("job_id", msg.JobID),
		slog.Int("image_count", len(msg.ImageURLs)),
	)

	job, err := w.store.Get(ctx, msg.JobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			// The submitter persists the record before enqueueing, so a
			// missing job is a poison message, not a race.
			return fmt.Errorf("no record for job %s: %w", msg.JobID, err)
		}
		return jobs.NewRetryableError(fmt.Errorf("failed to load job %s: %w", msg.JobID, err))
	}

	// Redelivery guard: a terminal job is done, reprocessing it would only
	// redo work the store already holds. Ack immediately.
	if job.Terminal() {
		metrics.MessagesRedelivered.Inc()
		w.logger.Info("Job already terminal, acknowledging redelivery",
			slog.String("job_id", job.JobID),
			slog.String("status", job.Status),
		)
		return nil
	}

	if err := w.store.MarkRunning(ctx, msg.JobID); err != nil {
		if errors.Is(err, jobs.ErrJobFinalized) {
			// Another worker finished the batch between Get and the update.
			metrics.MessagesRedelivered.Inc()
			return nil
		}
		// Batch cannot start. Record FAILED when the store lets us; if that
		// terminal write lands, the message is spent.
		if w.failJob(ctx, msg.JobID, fmt.Sprintf("cannot start batch: %s", err)) {
			return nil
		}
		return jobs.NewRetryableError(fmt.Errorf("failed to mark job running: %w", err))
	}

	results := w.processBatch(ctx, msg)

	if ctx.Err() != nil {
		// Interrupted mid-batch (shutdown). No terminal write: the job stays
		// RUNNING and redelivery retries the whole batch from the start.
		return jobs.NewRetryableError(fmt.Errorf("batch interrupted: %w", ctx.Err()))
	}

	// Per-image failures do not fail the job; the batch finished running, so
	// it completes with the failures recorded in the aggregate.
	message := fmt.Sprintf("Processed %d image(s)", len(msg.ImageURLs))
	if err := w.store.Complete(ctx, msg.JobID, results, message); err != nil {
		if errors.Is(err, jobs.ErrJobFinalized) {
			metrics.MessagesRedelivered.Inc()
			return nil
		}
		// Terminal state not persisted; leave the message unacked so the
		// batch is redelivered and reprocessed.
		return jobs.NewRetryableError(fmt.Errorf("failed to persist results for job %s: %w", msg.JobID, err))
	}

	metrics.JobsFinished.WithLabelValues(jobs.StatusCompleted).Inc()
	w.logger.Info("Job completed",
		slog.String("job_id", msg.JobID),
		slog.Int("image_count", len(results)),
	)

	return nil
}

// processBatch processes every image in the message independently, in order.
// A fetch or detection failure on one image is recorded in that image's
// result and never aborts the rest of the batch.
func (w *Worker) processBatch(ctx context.Context, msg *jobs.WorkMessage) []jobs.ImageResult {
	results := make([]jobs.ImageResult, 0, len(msg.ImageURLs))

	for idx, imageURL := range msg.ImageURLs {
		if ctx.Err() != nil {
			break
		}

		w.logger.Debug("Processing image",
			slog.String("job_id", msg.JobID),
			slog.Int("image_index", idx),
			slog.String("image_url", imageURL),
		)

		detections, err := w.processImage(ctx, imageURL)
		if err != nil {
			w.logger.Warn("Image processing failed",
				slog.String("job_id", msg.JobID),
				slog.String("image_url", imageURL),
				slog.String("error", err.Error()),
			)
			metrics.ImagesProcessed.WithLabelValues(metrics.OutcomeError).Inc()
			results = append(results, jobs.ImageResult{
				ImageURL:   imageURL,
				ImageIndex: idx,
				Detections: []jobs.Detection{},
				Error:      err.Error(),
			})
			continue
		}

		metrics.ImagesProcessed.WithLabelValues(metrics.OutcomeOK).Inc()
		results = append(results, jobs.ImageResult{
			ImageURL:       imageURL,
			ImageIndex:     idx,
			Detections:     detections,
			DetectionCount: len(detections),
		})
	}

	return results
}

// processImage fetches one image and runs detection on it.
func (w *Worker) processImage(ctx context.Context, imageURL string) ([]jobs.Detection, error) {
	image, err := w.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	detections, err := w.detector.Detect(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}

	return detections, nil
}

// failJob best-effort writes the FAILED terminal state and reports whether a
// terminal state is now durably persisted. It runs detached from ctx so a
// dying batch can still record why it stopped.
func (w *Worker) failJob(ctx context.Context, jobID, message string) bool {
	if err := w.store.Fail(context.WithoutCancel(ctx), jobID, message); err != nil {
		if errors.Is(err, jobs.ErrJobFinalized) {
			return true
		}
		w.logger.Error("Failed to mark job FAILED",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return false
	}
	metrics.JobsFinished.WithLabelValues(jobs.StatusFailed).Inc()
	return true
}
