package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/minhvt/vision-jobs/internal/jobs"
	"github.com/minhvt/vision-jobs/shared/rabbitmq"
)

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	RabbitClient  *rabbitmq.Client
	Store         jobs.Store
	Fetcher       jobs.Fetcher
	Detector      jobs.Detector
	Concurrency   int
	PrefetchCount int
	QueueName     string
}

// Worker is the long-running queue consumer. It dequeues one work message at
// a time per goroutine, runs the detection batch, and acknowledges the
// message only after the job's terminal state is durably persisted.
type Worker struct {
	logger        *slog.Logger
	rabbitClient  *rabbitmq.Client
	store         jobs.Store
	fetcher       jobs.Fetcher
	detector      jobs.Detector
	concurrency   int
	prefetchCount int
	queueName     string
	workerID      string
	jobsChan      chan *jobs.WorkMessage
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Worker{
		logger:        cfg.Logger,
		rabbitClient:  cfg.RabbitClient,
		store:         cfg.Store,
		fetcher:       cfg.Fetcher,
		detector:      cfg.Detector,
		concurrency:   concurrency,
		prefetchCount: cfg.PrefetchCount,
		queueName:     cfg.QueueName,
		workerID:      fmt.Sprintf("detection-worker-%s", uuid.New().String()[:8]),
		jobsChan:      make(chan *jobs.WorkMessage, concurrency),
		stopChan:      make(chan struct{}),
	}
}

// Start begins consuming work messages and blocks until ctx is canceled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Int("prefetch_count", w.prefetchCount),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return fmt.Errorf("failed to setup consumer: %w", err)
	}

	w.spawnWorkerPool(ctx)

	// Blocks until the context is canceled or the delivery channel closes.
	w.startMessageDispatcher(ctx, deliveries)

	return nil
}

// Stop gracefully stops the worker pool
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...",
		slog.String("worker_id", w.workerID),
	)
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}

// spawnWorkerPool spawns N processing goroutines based on concurrency
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}

	w.logger.Info("Worker pool spawned",
		slog.Int("worker_count", w.concurrency),
	)
}
