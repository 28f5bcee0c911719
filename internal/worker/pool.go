package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/minhvt/vision-jobs/internal/jobs"
)

// workerLoop is the main processing loop for one pool goroutine.
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("Worker goroutine stopping",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			w.logger.Info("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg, ok := <-w.jobsChan:
			if !ok {
				return
			}

			err := w.processJob(ctx, msg)

			channel := w.rabbitClient.GetChannel()
			if channel == nil {
				w.logger.Error("No channel available for ACK/NACK",
					slog.String("worker_name", workerName),
					slog.String("job_id", msg.JobID),
				)
				continue
			}

			if err != nil {
				requeue := shouldRequeue(err)
				w.logger.Error("Work message processing failed",
					slog.String("worker_name", workerName),
					slog.String("job_id", msg.JobID),
					slog.Bool("requeue", requeue),
					slog.String("error", err.Error()),
				)
				if nackErr := channel.Nack(msg.DeliveryTag, false, requeue); nackErr != nil {
					w.logger.Error("Failed to NACK message",
						slog.String("job_id", msg.JobID),
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			// Terminal state persisted; the delivery handle can be spent.
			if ackErr := channel.Ack(msg.DeliveryTag, false); ackErr != nil {
				w.logger.Error("Failed to ACK message",
					slog.String("job_id", msg.JobID),
					slog.String("error", ackErr.Error()),
				)
			}
		}
	}
}

// shouldRequeue decides the NACK requeue flag. Only transient infrastructure
// failures are worth an immediate requeue; everything else goes through the
// broker's dead-letter policy.
func shouldRequeue(err error) bool {
	// A message referencing a missing job record can never succeed.
	if errors.Is(err, jobs.ErrJobNotFound) {
		return false
	}

	var retryable *jobs.RetryableError
	if errors.As(err, &retryable) {
		return true
	}

	return false
}
