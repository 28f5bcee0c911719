package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/minhvt/vision-jobs/internal/jobs"
)

// Config holds detection service client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// HTTPDetector calls a detection sidecar over HTTP. The sidecar owns the
// model; this client only moves bytes and parses boxes.
type HTTPDetector struct {
	baseURL string
	client  *http.Client
}

type detectResponse struct {
	Detections []jobs.Detection `json:"detections"`
	Error      string           `json:"error,omitempty"`
}

// NewHTTPDetector creates a new detection service client
func NewHTTPDetector(cfg *Config) *HTTPDetector {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8500"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &HTTPDetector{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Detect posts one image to the detection service and returns its labeled
// boxes. An empty list is a valid result, not an error.
func (d *HTTPDetector) Detect(ctx context.Context, image []byte) ([]jobs.Detection, error) {
	url := fmt.Sprintf("%s/detect", d.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(image))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detection request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("detection service returned status %d", resp.StatusCode)
	}

	var decoded detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode detection response: %w", err)
	}
	if decoded.Error != "" {
		return nil, errors.New(decoded.Error)
	}

	if decoded.Detections == nil {
		return []jobs.Detection{}, nil
	}
	return decoded.Detections, nil
}
