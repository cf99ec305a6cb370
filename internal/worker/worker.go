// Package worker runs the Postgres-backed background job queue.
package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loiredigital/site/internal/metrics"
	"github.com/loiredigital/site/internal/repository"
)

// Worker manages background job processing with concurrent workers.
type Worker struct {
	queries  *repository.Queries
	handlers map[string]JobHandler
	config   Config
	logger   *slog.Logger

	wg     sync.WaitGroup
	stopCh chan struct{}
}

// New creates a Worker. Start it with Start() and stop it with Stop().
func New(queries *repository.Queries, config Config, logger *slog.Logger) (*Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Worker{
		queries:  queries,
		handlers: make(map[string]JobHandler),
		config:   config,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Register adds a job handler. Call before Start().
func (w *Worker) Register(handler JobHandler) {
	jobType := handler.Type()
	if _, exists := w.handlers[jobType]; exists {
		w.logger.Warn("overwriting existing handler", "job_type", jobType)
	}
	w.handlers[jobType] = handler
	w.logger.Debug("registered job handler", "job_type", jobType)
}

// Start recovers stale jobs from previous crashes, then begins processing
// with the configured number of concurrent workers.
func (w *Worker) Start(ctx context.Context) {
	if err := w.recoverStaleJobs(ctx); err != nil {
		w.logger.Error("failed to recover stale jobs", "error", err)
	}

	for i := 0; i < w.config.Concurrency; i++ {
		w.wg.Add(1)
		go w.runWorker(ctx, i+1)
	}

	w.logger.Info("worker started", "concurrency", w.config.Concurrency)
}

// Stop signals all workers to stop and waits for them, up to the
// configured ShutdownTimeout.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker...")
	close(w.stopCh)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("worker stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		w.logger.Warn("worker shutdown timeout exceeded, some jobs may still be running")
	}
}

func (w *Worker) recoverStaleJobs(ctx context.Context) error {
	count, err := w.queries.RecoverStaleJobs(ctx, w.config.StaleJobThreshold.Seconds())
	if err != nil {
		return fmt.Errorf("recover stale jobs: %w", err)
	}
	if count > 0 {
		w.logger.Warn("recovered stale jobs", "count", count, "threshold", w.config.StaleJobThreshold)
	}
	return nil
}

// runWorker polls for jobs until stopCh is closed.
func (w *Worker) runWorker(ctx context.Context, workerID int) {
	defer w.wg.Done()

	logger := w.logger.With("worker_id", workerID)
	logger.Debug("worker started")

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			logger.Debug("worker stopping")
			return
		case <-ticker.C:
			if err := w.processNextJob(ctx, logger); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					// Queue empty, normal.
					continue
				}
				logger.Error("failed to process job", "error", err)
			}
		}
	}
}

// processNextJob claims and executes a single job.
// Returns sql.ErrNoRows if the queue is empty.
func (w *Worker) processNextJob(ctx context.Context, logger *slog.Logger) error {
	// The claim query locks, marks running and returns the row in one
	// statement, so no surrounding transaction is needed here.
	job, err := w.queries.ClaimJob(ctx)
	if err != nil {
		return err
	}

	logger = logger.With("job_id", job.ID, "job_type", job.JobType, "attempt", job.Attempts)
	logger.Info("processing job")

	start := time.Now()
	err = w.executeJob(ctx, job)
	metrics.JobDuration.WithLabelValues(job.JobType).Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Error("job failed", "error", err)
		metrics.JobsTotal.WithLabelValues(job.JobType, "failed").Inc()
		w.markJobFailed(ctx, job.ID, err)
		return fmt.Errorf("execute job: %w", err)
	}

	logger.Info("job completed")
	metrics.JobsTotal.WithLabelValues(job.JobType, "completed").Inc()
	if err := w.queries.CompleteJob(ctx, job.ID); err != nil {
		logger.Error("failed to mark job as completed", "error", err)
		return err
	}
	return nil
}

// executeJob runs the handler for the job under the configured timeout.
func (w *Worker) executeJob(ctx context.Context, job repository.Job) error {
	handler, ok := w.handlers[job.JobType]
	if !ok {
		return NewPermanentError(fmt.Errorf("no handler registered for job type: %s", job.JobType))
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.config.JobTimeout)
	defer cancel()

	return handler.Handle(jobCtx, job.Payload)
}

// markJobFailed records the failure. Permanent errors and exhausted
// attempts end the job; anything else reschedules with backoff.
func (w *Worker) markJobFailed(ctx context.Context, jobID uuid.UUID, jobErr error) {
	permanent := IsPermanent(jobErr)
	if permanent {
		w.logger.Warn("job failed with permanent error, will not retry", "job_id", jobID, "error", jobErr)
	}

	if err := w.queries.FailJob(ctx, jobID, jobErr.Error(), permanent); err != nil {
		w.logger.Error("failed to mark job as failed", "job_id", jobID, "error", err)
	}
}
