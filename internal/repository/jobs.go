package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// Job is a row in the background job queue.
type Job struct {
	ID          uuid.UUID
	JobType     string
	Payload     json.RawMessage
	Status      string
	Priority    int32
	Attempts    int32
	MaxAttempts int32
	ScheduledAt time.Time
}

// EnqueueJobParams carries parameters for scheduling a background job.
type EnqueueJobParams struct {
	JobType     string
	Payload     json.RawMessage
	Priority    int32
	MaxAttempts int32
	ScheduledAt time.Time
}

const enqueueJob = `
INSERT INTO jobs (id, job_type, payload, priority, max_attempts, scheduled_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, job_type, payload, status, priority, attempts, max_attempts, scheduled_at
`

func (q *Queries) EnqueueJob(ctx context.Context, params EnqueueJobParams) (Job, error) {
	if params.MaxAttempts < 1 {
		params.MaxAttempts = 3
	}
	if params.ScheduledAt.IsZero() {
		params.ScheduledAt = time.Now()
	}

	var job Job
	var payload pqtype.NullRawMessage
	err := q.db.QueryRowContext(ctx, enqueueJob,
		uuid.New(),
		params.JobType,
		pqtype.NullRawMessage{RawMessage: params.Payload, Valid: len(params.Payload) > 0},
		params.Priority,
		params.MaxAttempts,
		params.ScheduledAt,
	).Scan(
		&job.ID,
		&job.JobType,
		&payload,
		&job.Status,
		&job.Priority,
		&job.Attempts,
		&job.MaxAttempts,
		&job.ScheduledAt,
	)
	if err != nil {
		return Job{}, fmt.Errorf("enqueue job: %w", err)
	}
	job.Payload = payload.RawMessage
	return job, nil
}

// claimJob atomically claims the next runnable job. SKIP LOCKED lets
// concurrent workers claim different rows without blocking each other.
const claimJob = `
UPDATE jobs
SET status = 'running', started_at = now(), attempts = attempts + 1, updated_at = now()
WHERE id = (
    SELECT id FROM jobs
    WHERE status = 'pending' AND scheduled_at <= now()
    ORDER BY priority DESC, scheduled_at
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
RETURNING id, job_type, payload, status, priority, attempts, max_attempts, scheduled_at
`

// ClaimJob dequeues and marks the next pending job as running.
// Returns sql.ErrNoRows when the queue is empty.
func (q *Queries) ClaimJob(ctx context.Context) (Job, error) {
	var job Job
	var payload pqtype.NullRawMessage
	err := q.db.QueryRowContext(ctx, claimJob).Scan(
		&job.ID,
		&job.JobType,
		&payload,
		&job.Status,
		&job.Priority,
		&job.Attempts,
		&job.MaxAttempts,
		&job.ScheduledAt,
	)
	if err != nil {
		return Job{}, err
	}
	job.Payload = payload.RawMessage
	return job, nil
}

const completeJob = `
UPDATE jobs SET status = 'completed', completed_at = now(), updated_at = now()
WHERE id = $1
`

func (q *Queries) CompleteJob(ctx context.Context, id uuid.UUID) error {
	if _, err := q.db.ExecContext(ctx, completeJob, id); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return nil
}

// failJob marks a job failed, or reschedules it with exponential backoff
// when attempts remain and the error is not permanent.
const failJob = `
UPDATE jobs
SET status = CASE WHEN $3::boolean OR attempts >= max_attempts THEN 'failed' ELSE 'pending' END,
    scheduled_at = now() + make_interval(secs => least(300, 5 * pow(2, attempts))),
    last_error = $2,
    updated_at = now()
WHERE id = $1
`

func (q *Queries) FailJob(ctx context.Context, id uuid.UUID, errorMessage string, permanent bool) error {
	if _, err := q.db.ExecContext(ctx, failJob, id, errorMessage, permanent); err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return nil
}

// recoverStaleJobs resets jobs stuck in 'running' from a crashed worker.
const recoverStaleJobs = `
UPDATE jobs SET status = 'pending', updated_at = now()
WHERE status = 'running' AND started_at < now() - make_interval(secs => $1)
`

func (q *Queries) RecoverStaleJobs(ctx context.Context, thresholdSeconds float64) (int64, error) {
	result, err := q.db.ExecContext(ctx, recoverStaleJobs, thresholdSeconds)
	if err != nil {
		return 0, fmt.Errorf("recover stale jobs: %w", err)
	}
	return result.RowsAffected()
}
