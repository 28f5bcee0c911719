package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/minhvt/vision-jobs/internal/jobs"
)

// Store is the Postgres-backed job store. Every status transition is a single
// guarded UPDATE so concurrent workers never race a terminal record back to
// RUNNING.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store instance
func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

type jobRow struct {
	JobID      string         `db:"job_id"`
	UserID     sql.NullString `db:"user_id"`
	Status     string         `db:"status"`
	ImageURLs  []byte         `db:"image_urls"`
	ImageCount int            `db:"image_count"`
	Metadata   []byte         `db:"metadata"`
	Detections []byte         `db:"detections"`
	Message    sql.NullString `db:"message"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

const jobColumns = `
	job_id, user_id, status, image_urls, image_count,
	metadata, detections, message, created_at, updated_at
`

// Create inserts a new PENDING job record.
func (s *Store) Create(ctx context.Context, job *jobs.Job) error {
	query := `
		INSERT INTO detection_jobs (
			job_id, user_id, status, image_urls, image_count,
			metadata, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8
		)
	`

	urlsJSON, err := json.Marshal(job.ImageURLs)
	if err != nil {
		return fmt.Errorf("failed to marshal image urls: %w", err)
	}

	metaJSON, err := json.Marshal(job.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		query,
		job.JobID,
		job.UserID,
		job.Status,
		urlsJSON,
		job.ImageCount,
		metaJSON,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// Get retrieves a job by id, or jobs.ErrJobNotFound.
func (s *Store) Get(ctx context.Context, jobID string) (*jobs.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM detection_jobs WHERE job_id = $1`

	var row jobRow
	if err := s.db.GetContext(ctx, &row, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, jobs.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return rowToJob(&row)
}

// List returns jobs matching filter ordered newest first. One extra row past
// PageSize is returned so callers can detect another page.
func (s *Store) List(ctx context.Context, filter jobs.ListFilter) ([]jobs.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM detection_jobs WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, filter.UserID)
		argIdx++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, job_id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.JobID)
		argIdx += 2
	}

	query += " ORDER BY created_at DESC, job_id DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	out := make([]jobs.Job, 0, len(rows))
	for i := range rows {
		job, err := rowToJob(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *job)
	}

	return out, nil
}

// MarkRunning transitions the job to RUNNING. Jobs already RUNNING (message
// redelivery) match the guard and are overwritten in place.
func (s *Store) MarkRunning(ctx context.Context, jobID string) error {
	query := `
		UPDATE detection_jobs
		SET status = $1,
		    updated_at = NOW()
		WHERE job_id = $2
		  AND status IN ($3, $1)
	`

	result, err := s.db.ExecContext(ctx, query, jobs.StatusRunning, jobID, jobs.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}

	return s.checkTransition(ctx, result, jobID)
}

// Complete writes the COMPLETED terminal state with the aggregated results.
func (s *Store) Complete(ctx context.Context, jobID string, results []jobs.ImageResult, message string) error {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	query := `
		UPDATE detection_jobs
		SET status = $1,
		    detections = $2,
		    message = $3,
		    updated_at = NOW()
		WHERE job_id = $4
		  AND status NOT IN ($1, $5)
	`

	result, err := s.db.ExecContext(ctx, query, jobs.StatusCompleted, resultsJSON, message, jobID, jobs.StatusFailed)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	return s.checkTransition(ctx, result, jobID)
}

// Fail writes the FAILED terminal state.
func (s *Store) Fail(ctx context.Context, jobID string, message string) error {
	query := `
		UPDATE detection_jobs
		SET status = $1,
		    message = $2,
		    updated_at = NOW()
		WHERE job_id = $3
		  AND status NOT IN ($1, $4)
	`

	result, err := s.db.ExecContext(ctx, query, jobs.StatusFailed, message, jobID, jobs.StatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}

	return s.checkTransition(ctx, result, jobID)
}

// checkTransition distinguishes the two reasons a guarded status UPDATE can
// match zero rows: the record is missing, or another worker already finalized
// it.
func (s *Store) checkTransition(ctx context.Context, result sql.Result, jobID string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var status string
	err = s.db.GetContext(ctx, &status, `SELECT status FROM detection_jobs WHERE job_id = $1`, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return jobs.ErrJobNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check job status: %w", err)
	}

	s.logger.Warn("Status transition skipped - job already finalized",
		slog.String("job_id", jobID),
		slog.String("status", status),
	)
	return jobs.ErrJobFinalized
}

func rowToJob(row *jobRow) (*jobs.Job, error) {
	job := &jobs.Job{
		JobID:      row.JobID,
		Status:     row.Status,
		ImageCount: row.ImageCount,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}

	if row.UserID.Valid {
		job.UserID = row.UserID.String
	}
	if row.Message.Valid {
		job.Message = row.Message.String
	}

	if len(row.ImageURLs) > 0 {
		if err := json.Unmarshal(row.ImageURLs, &job.ImageURLs); err != nil {
			return nil, fmt.Errorf("failed to decode image urls: %w", err)
		}
	}

	if len(row.Detections) > 0 {
		if err := json.Unmarshal(row.Detections, &job.Detections); err != nil {
			return nil, fmt.Errorf("failed to decode detections: %w", err)
		}
	}

	if len(row.Metadata) > 0 {
		meta, err := decodeJSONMap(row.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
		job.Metadata = meta
	}

	return job, nil
}
