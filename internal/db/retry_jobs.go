package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateRetryJob inserts a retry job eligible to run immediately.
func (db *DB) CreateRetryJob(ctx context.Context, blueprintID uuid.UUID, data RequestData) (*RetryJob, error) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	job := RetryJob{
		BlueprintID: blueprintID,
		RequestData: data,
	}
	err = db.pool.QueryRow(ctx,
		`INSERT INTO retry_jobs (blueprint_id, request_data)
		 VALUES ($1, $2)
		 RETURNING id, retry_count, next_retry_at, created_at`,
		blueprintID, dataJSON,
	).Scan(&job.ID, &job.RetryCount, &job.NextRetryAt, &job.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create retry job: %w", err)
	}

	return &job, nil
}

// DueRetryJobs fetches up to limit jobs whose next_retry_at is at or before
// now, oldest-due first.
func (db *DB) DueRetryJobs(ctx context.Context, now time.Time, limit int) ([]RetryJob, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, blueprint_id, request_data, retry_count, next_retry_at,
		        last_error_code, last_error_message, created_at
		 FROM retry_jobs
		 WHERE next_retry_at <= $1
		 ORDER BY next_retry_at ASC
		 LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due retry jobs: %w", err)
	}
	defer rows.Close()

	var jobs []RetryJob
	for rows.Next() {
		var job RetryJob
		var dataJSON []byte
		if err := rows.Scan(&job.ID, &job.BlueprintID, &dataJSON, &job.RetryCount,
			&job.NextRetryAt, &job.LastErrorCode, &job.LastErrorMessage, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan retry job: %w", err)
		}
		if err := json.Unmarshal(dataJSON, &job.RequestData); err != nil {
			return nil, fmt.Errorf("failed to decode request data for job %s: %w", job.ID, err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read retry jobs: %w", err)
	}

	return jobs, nil
}

// RescheduleRetryJob records a retriable failure: bumped retry count, the
// next eligible time, and the last error classification and message.
func (db *DB) RescheduleRetryJob(ctx context.Context, id uuid.UUID, retryCount int, nextRetryAt time.Time, errorCode, errorMessage string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE retry_jobs
		 SET retry_count = $1, next_retry_at = $2, last_error_code = $3, last_error_message = $4
		 WHERE id = $5`,
		retryCount, nextRetryAt, errorCode, errorMessage, id,
	)
	if err != nil {
		return fmt.Errorf("failed to reschedule retry job: %w", err)
	}
	return nil
}

// DeleteRetryJob removes a job after a terminal outcome.
func (db *DB) DeleteRetryJob(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM retry_jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete retry job: %w", err)
	}
	return nil
}
