package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/minhvt/vision-jobs/internal/jobs"
	"github.com/minhvt/vision-jobs/shared/rabbitmq"
)

// WorkPublisher publishes work messages to the detection queue.
type WorkPublisher struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

// NewWorkPublisher creates a new WorkPublisher instance
func NewWorkPublisher(client *rabbitmq.Client, logger *slog.Logger) *WorkPublisher {
	return &WorkPublisher{
		client: client,
		logger: logger,
	}
}

// PublishWorkMessage enqueues msg as a persistent JSON message. The broker
// retry here is at-least-once; a submission never produces more than one
// logical message for a job.
func (p *WorkPublisher) PublishWorkMessage(ctx context.Context, msg *jobs.WorkMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal work message: %w", err)
	}

	if err := p.client.PublishWithRetry(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish work message: %w", err)
	}

	p.logger.Debug("Work message published",
		slog.String("job_id", msg.JobID),
		slog.Int("image_count", len(msg.ImageURLs)),
	)

	return nil
}
