package jobs

import "time"

// Job status constants
const (
	StatusPending   = "PENDING"
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Job is one batch request to process a set of images, tracked end-to-end
// by a single identifier and status.
type Job struct {
	JobID      string
	UserID     string
	Status     string
	ImageURLs  []string
	ImageCount int
	Metadata   map[string]any
	Detections []ImageResult
	Message    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Terminal reports whether the job reached a final state. Terminal jobs are
// never transitioned again; redeliveries for them are acknowledged as-is.
func (j *Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Detection is one labeled bounding box returned by the detection service.
type Detection struct {
	Label      string     `json:"label"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox"`
}

// ImageResult is the per-image outcome aggregated into a job's detections.
// Error is set only when that image failed independently of the others.
type ImageResult struct {
	ImageURL       string      `json:"imageUrl"`
	ImageIndex     int         `json:"imageIndex"`
	Detections     []Detection `json:"detections"`
	DetectionCount int         `json:"detectionCount"`
	Error          string      `json:"error,omitempty"`
}

// WorkMessage is the queued unit of work for exactly one job. ImageURLs is a
// snapshot of the job's list at submission time, not re-read from the store.
type WorkMessage struct {
	JobID     string         `json:"jobId"`
	ImageURLs []string       `json:"imageUrls"`
	UserID    string         `json:"userId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`

	// DeliveryTag is the broker receipt handle for this delivery; it is only
	// valid for acknowledging the message that carried it.
	DeliveryTag uint64 `json:"-"`
}

// StatusView is the read-only projection returned to status clients.
type StatusView struct {
	JobID      string        `json:"jobId"`
	Status     string        `json:"status"`
	ImageCount int           `json:"imageCount"`
	Detections []ImageResult `json:"detections"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
	Message    string        `json:"message,omitempty"`
}
