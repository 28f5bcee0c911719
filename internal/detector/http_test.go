package detector

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPDetector_Detect(t *testing.T) {
	imageBytes := []byte{0xFF, 0xD8, 0xFF, 0xE0} // jpeg magic

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/detect", r.URL.Path)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, imageBytes, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"detections": [
				{"label": "dog", "confidence": 0.92, "bbox": [10.5, 20.0, 110.5, 220.0]},
				{"label": "person", "confidence": 0.61, "bbox": [0, 0, 50, 80]}
			]
		}`))
	}))
	defer srv.Close()

	d := NewHTTPDetector(&Config{BaseURL: srv.URL, Timeout: 5 * time.Second})

	detections, err := d.Detect(context.Background(), imageBytes)
	require.NoError(t, err)
	require.Len(t, detections, 2)

	assert.Equal(t, "dog", detections[0].Label)
	assert.InDelta(t, 0.92, detections[0].Confidence, 1e-9)
	assert.Equal(t, [4]float64{10.5, 20.0, 110.5, 220.0}, detections[0].BBox)
}

func TestHTTPDetector_Detect_NoObjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"detections": []}`))
	}))
	defer srv.Close()

	d := NewHTTPDetector(&Config{BaseURL: srv.URL})

	detections, err := d.Detect(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.NotNil(t, detections)
	assert.Empty(t, detections)
}

func TestHTTPDetector_Detect_ServiceError(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		errText string
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			errText: "status 500",
		},
		{
			name: "error in payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"error": "model not loaded"}`))
			},
			errText: "model not loaded",
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			errText: "failed to decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			d := NewHTTPDetector(&Config{BaseURL: srv.URL})
			_, err := d.Detect(context.Background(), []byte("img"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}
