package jobs

import "errors"

var (
	// ErrNoImages is returned by Submit when the request carries no image URLs
	ErrNoImages = errors.New("no image URLs provided")

	// ErrJobNotFound is returned when a job cannot be found in the store
	ErrJobNotFound = errors.New("job not found")

	// ErrJobFinalized is returned by conditional status updates that matched a
	// job already in a terminal state
	ErrJobFinalized = errors.New("job already in terminal state")
)

// RetryableError wraps transient infrastructure errors that should leave the
// work message unacknowledged so the broker redelivers it.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
