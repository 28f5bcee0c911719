package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minhvt/vision-jobs/internal/api/dto"
	"github.com/minhvt/vision-jobs/internal/blob"
	"github.com/minhvt/vision-jobs/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	byID      map[string]*jobs.Job
	listed    []jobs.Job
	createErr error
	listErr   error
}

func newMemStore() *memStore {
	return &memStore{byID: make(map[string]*jobs.Job)}
}

func (s *memStore) Create(_ context.Context, job *jobs.Job) error {
	if s.createErr != nil {
		return s.createErr
	}
	cp := *job
	s.byID[job.JobID] = &cp
	return nil
}

func (s *memStore) Get(_ context.Context, jobID string) (*jobs.Job, error) {
	job, ok := s.byID[jobID]
	if !ok {
		return nil, jobs.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *memStore) List(_ context.Context, _ jobs.ListFilter) ([]jobs.Job, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listed, nil
}

func (s *memStore) MarkRunning(_ context.Context, _ string) error { return nil }

func (s *memStore) Complete(_ context.Context, _ string, _ []jobs.ImageResult, _ string) error {
	return nil
}

func (s *memStore) Fail(_ context.Context, _ string, _ string) error { return nil }

type memPublisher struct {
	published []*jobs.WorkMessage
	err       error
}

func (p *memPublisher) PublishWorkMessage(_ context.Context, msg *jobs.WorkMessage) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

type stubPresigner struct {
	upload *blob.PresignedUpload
	err    error
	gotCtx bool
}

func (p *stubPresigner) PresignUpload(ctx context.Context, _ string) (*blob.PresignedUpload, error) {
	p.gotCtx = ctx != nil
	if p.err != nil {
		return nil, p.err
	}
	return p.upload, nil
}

func newTestRouter(store *memStore, pub *memPublisher, presigner *stubPresigner) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.DiscardHandler)
	deps := &Dependencies{
		Logger:       logger,
		Submitter:    jobs.NewSubmitter(store, pub, logger),
		StatusReader: jobs.NewStatusReader(store),
		Uploads:      presigner,
	}
	h := NewJobHandler(deps)

	r := gin.New()
	r.POST("/api/v1/jobs", h.SubmitJob)
	r.GET("/api/v1/jobs", h.ListJobs)
	r.GET("/api/v1/jobs/:job_id", h.GetJobStatus)
	r.POST("/api/v1/uploads/presign", h.PresignUpload)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitJob(t *testing.T) {
	store := newMemStore()
	pub := &memPublisher{}
	r := newTestRouter(store, pub, &stubPresigner{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs", dto.SubmitJobRequest{
		ImageURLs: []string{"s3://images/a.jpg", "s3://images/b.jpg"},
		UserID:    "user-1",
		Metadata:  map[string]any{"source": "test"},
	})

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp dto.SubmitJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.JobID)
	_, err := uuid.Parse(resp.JobID)
	assert.NoError(t, err)
	assert.Equal(t, jobs.StatusPending, resp.Status)
	assert.Equal(t, 2, resp.ImageCount)

	require.Len(t, pub.published, 1)
	assert.Equal(t, resp.JobID, pub.published[0].JobID)
	_, ok := store.byID[resp.JobID]
	assert.True(t, ok)
}

func TestSubmitJob_EmptyBatch(t *testing.T) {
	store := newMemStore()
	pub := &memPublisher{}
	r := newTestRouter(store, pub, &stubPresigner{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs", map[string]any{
		"imageUrls": []string{},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, pub.published)
	assert.Empty(t, store.byID)
}

func TestSubmitJob_MalformedBody(t *testing.T) {
	r := newTestRouter(newMemStore(), &memPublisher{}, &stubPresigner{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitJob_PublishFailure(t *testing.T) {
	store := newMemStore()
	pub := &memPublisher{err: fmt.Errorf("broker unavailable")}
	r := newTestRouter(store, pub, &stubPresigner{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs", dto.SubmitJobRequest{
		ImageURLs: []string{"s3://images/a.jpg"},
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetJobStatus(t *testing.T) {
	store := newMemStore()
	jobID := uuid.New().String()
	store.byID[jobID] = &jobs.Job{
		JobID:      jobID,
		Status:     jobs.StatusCompleted,
		ImageCount: 1,
		Detections: []jobs.ImageResult{
			{
				ImageURL:   "s3://images/a.jpg",
				ImageIndex: 0,
				Detections: []jobs.Detection{
					{Label: "dog", Confidence: 0.91, BBox: [4]float64{1, 2, 3, 4}},
				},
				DetectionCount: 1,
			},
		},
		Message: "Processed 1 image(s)",
	}
	r := newTestRouter(store, &memPublisher{}, &stubPresigner{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/jobs/"+jobID, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var view jobs.StatusView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, jobID, view.JobID)
	assert.Equal(t, jobs.StatusCompleted, view.Status)
	require.Len(t, view.Detections, 1)
	assert.Equal(t, "dog", view.Detections[0].Detections[0].Label)
}

func TestGetJobStatus_InvalidID(t *testing.T) {
	r := newTestRouter(newMemStore(), &memPublisher{}, &stubPresigner{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/jobs/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJobStatus_NotFound(t *testing.T) {
	r := newTestRouter(newMemStore(), &memPublisher{}, &stubPresigner{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/jobs/"+uuid.New().String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListJobs(t *testing.T) {
	store := newMemStore()
	now := time.Now().UTC()

	// Three rows back for a page size of two signals another page.
	for i := 0; i < 3; i++ {
		store.listed = append(store.listed, jobs.Job{
			JobID:      uuid.New().String(),
			UserID:     "user-1",
			Status:     jobs.StatusCompleted,
			ImageCount: 1,
			CreatedAt:  now.Add(-time.Duration(i) * time.Minute),
			UpdatedAt:  now,
		})
	}
	r := newTestRouter(store, &memPublisher{}, &stubPresigner{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/jobs?user_id=user-1&page_size=2", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ListJobsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 2)
	require.NotEmpty(t, resp.NextCursor)

	cursor, err := DecodeJobCursor(resp.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, resp.Jobs[1].JobID, cursor.JobID)
}

func TestListJobs_InvalidCursor(t *testing.T) {
	r := newTestRouter(newMemStore(), &memPublisher{}, &stubPresigner{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/jobs?cursor=%21%21not-base64", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPresignUpload(t *testing.T) {
	presigner := &stubPresigner{
		upload: &blob.PresignedUpload{
			URL:    "https://storage.local/images/uploads/2026/08/28/abc-cat.jpg?sig=xyz",
			Key:    "uploads/2026/08/28/abc-cat.jpg",
			Bucket: "images",
		},
	}
	r := newTestRouter(newMemStore(), &memPublisher{}, presigner)

	w := doJSON(t, r, http.MethodPost, "/api/v1/uploads/presign", dto.PresignUploadRequest{
		Filename: "cat.jpg",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp blob.PresignedUpload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "images", resp.Bucket)
	assert.Equal(t, "uploads/2026/08/28/abc-cat.jpg", resp.Key)
	assert.True(t, presigner.gotCtx)
}

func TestPresignUpload_StorageError(t *testing.T) {
	presigner := &stubPresigner{err: fmt.Errorf("storage unavailable")}
	r := newTestRouter(newMemStore(), &memPublisher{}, presigner)

	w := doJSON(t, r, http.MethodPost, "/api/v1/uploads/presign", dto.PresignUploadRequest{})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
