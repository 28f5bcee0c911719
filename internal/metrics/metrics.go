package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobsSubmitted counts accepted batch submissions.
	JobsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "detection_jobs_submitted_total",
		Help: "Number of detection jobs accepted for async processing",
	})

	// JobsFinished counts jobs reaching a terminal state, by status.
	JobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "detection_jobs_finished_total",
		Help: "Number of detection jobs reaching a terminal state",
	}, []string{"status"})

	// ImagesProcessed counts per-image outcomes inside batches.
	ImagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "detection_images_processed_total",
		Help: "Number of images processed within detection jobs",
	}, []string{"outcome"})

	// MessagesRedelivered counts work messages acknowledged by the terminal
	// guard without reprocessing.
	MessagesRedelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "detection_messages_redelivered_total",
		Help: "Number of redelivered work messages short-circuited on a terminal job",
	})
)

// Outcome label values for ImagesProcessed.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)
