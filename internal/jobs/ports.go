package jobs

import (
	"context"
	"time"
)

// Store is the durable record of job state, keyed by job id. All mutations are
// server-applied atomic operations; callers never read-modify-write a record.
type Store interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, jobID string) (*Job, error)
	List(ctx context.Context, filter ListFilter) ([]Job, error)

	// MarkRunning transitions PENDING -> RUNNING. Re-marking a job that is
	// already RUNNING is a no-op overwrite, not an error.
	MarkRunning(ctx context.Context, jobID string) error

	// Complete and Fail write a terminal state. Both return ErrJobFinalized if
	// the job already reached a terminal state.
	Complete(ctx context.Context, jobID string, results []ImageResult, message string) error
	Fail(ctx context.Context, jobID string, message string) error
}

// ListFilter narrows and paginates List results.
type ListFilter struct {
	UserID   string
	Status   string
	PageSize int
	Cursor   *ListCursor
}

// ListCursor is a keyset-pagination position over (created_at, job_id).
type ListCursor struct {
	CreatedAt time.Time
	JobID     string
}

// Publisher enqueues one work message per submitted job.
type Publisher interface {
	PublishWorkMessage(ctx context.Context, msg *WorkMessage) error
}

// Fetcher resolves an image locator to raw image bytes.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// Detector converts one image into a list of labeled bounding boxes.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]Detection, error)
}
