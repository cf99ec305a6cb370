package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/loiredigital/site/internal/repository"
)

// Job type constants. These must match the JobHandler.Type() values.
const (
	JobTypeSendQuoteEmail = "send_quote_email"
	JobTypeNotifyLead     = "notify_lead"
)

// Priority constants for job scheduling
const (
	PriorityLow    = 0
	PriorityNormal = 10
	PriorityHigh   = 20
)

// SendQuoteEmailPayload is the payload for quote email delivery jobs.
type SendQuoteEmailPayload struct {
	QuoteRequestID uuid.UUID `json:"quote_request_id"`
}

// NotifyLeadPayload is the payload for admin lead notification jobs.
type NotifyLeadPayload struct {
	LeadID         uuid.UUID `json:"lead_id"`
	QuoteRequestID uuid.UUID `json:"quote_request_id"`
}

// Enqueuer is the single repository method enqueue helpers need, so
// callers can pass either *repository.Queries or a test fake.
type Enqueuer interface {
	EnqueueJob(ctx context.Context, params repository.EnqueueJobParams) (repository.Job, error)
}

// EnqueueOption customizes job enqueue parameters.
type EnqueueOption func(*repository.EnqueueJobParams)

// WithPriority sets the job priority.
func WithPriority(priority int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.Priority = priority
	}
}

// WithMaxAttempts sets the maximum number of retry attempts.
func WithMaxAttempts(attempts int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.MaxAttempts = attempts
	}
}

// WithDelay schedules the job to run after a delay.
func WithDelay(delay time.Duration) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.ScheduledAt = time.Now().Add(delay)
	}
}

// EnqueueJob is the generic helper for enqueuing jobs with custom options.
func EnqueueJob(
	ctx context.Context,
	q Enqueuer,
	jobType string,
	payload interface{},
	opts ...EnqueueOption,
) (repository.Job, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return repository.Job{}, fmt.Errorf("marshal payload: %w", err)
	}

	params := repository.EnqueueJobParams{
		JobType:     jobType,
		Payload:     payloadJSON,
		Priority:    PriorityNormal,
		MaxAttempts: 3,
		ScheduledAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&params)
	}

	job, err := q.EnqueueJob(ctx, params)
	if err != nil {
		return repository.Job{}, fmt.Errorf("enqueue job: %w", err)
	}
	return job, nil
}

// EnqueueSendQuoteEmail enqueues delivery of a styled quote email for a
// stored quote request.
func EnqueueSendQuoteEmail(
	ctx context.Context,
	q Enqueuer,
	quoteRequestID uuid.UUID,
	opts ...EnqueueOption,
) (repository.Job, error) {
	payload := SendQuoteEmailPayload{QuoteRequestID: quoteRequestID}
	return EnqueueJob(ctx, q, JobTypeSendQuoteEmail, payload, opts...)
}

// EnqueueNotifyLead enqueues the admin notification for a captured lead.
func EnqueueNotifyLead(
	ctx context.Context,
	q Enqueuer,
	leadID uuid.UUID,
	quoteRequestID uuid.UUID,
	opts ...EnqueueOption,
) (repository.Job, error) {
	payload := NotifyLeadPayload{LeadID: leadID, QuoteRequestID: quoteRequestID}
	return EnqueueJob(ctx, q, JobTypeNotifyLead, payload, opts...)
}
