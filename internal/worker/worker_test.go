package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/loiredigital/site/internal/repository"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid default config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name: "concurrency too low",
			config: Config{
				Concurrency:       0,
				PollInterval:      5 * time.Second,
				JobTimeout:        2 * time.Minute,
				ShutdownTimeout:   30 * time.Second,
				StaleJobThreshold: 10 * time.Minute,
			},
			wantErr: true,
		},
		{
			name: "concurrency too high",
			config: Config{
				Concurrency:       101,
				PollInterval:      5 * time.Second,
				JobTimeout:        2 * time.Minute,
				ShutdownTimeout:   30 * time.Second,
				StaleJobThreshold: 10 * time.Minute,
			},
			wantErr: true,
		},
		{
			name: "poll interval too short",
			config: Config{
				Concurrency:       2,
				PollInterval:      500 * time.Millisecond,
				JobTimeout:        2 * time.Minute,
				ShutdownTimeout:   30 * time.Second,
				StaleJobThreshold: 10 * time.Minute,
			},
			wantErr: true,
		},
		{
			name: "stale threshold too short",
			config: Config{
				Concurrency:       2,
				PollInterval:      5 * time.Second,
				JobTimeout:        2 * time.Minute,
				ShutdownTimeout:   30 * time.Second,
				StaleJobThreshold: 30 * time.Second,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "permanent error",
			err:  NewPermanentError(context.Canceled),
			want: true,
		},
		{
			name: "wrapped permanent error",
			err:  fmt.Errorf("execute job: %w", NewPermanentError(errors.New("boom"))),
			want: true,
		},
		{
			name: "regular error",
			err:  context.Canceled,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPermanent(tt.err); got != tt.want {
				t.Errorf("IsPermanent() = %v, want %v", got, tt.want)
			}
		})
	}
}

// fakeEnqueuer records the params the helpers build.
type fakeEnqueuer struct {
	last repository.EnqueueJobParams
}

func (f *fakeEnqueuer) EnqueueJob(_ context.Context, params repository.EnqueueJobParams) (repository.Job, error) {
	f.last = params
	return repository.Job{
		ID:          uuid.New(),
		JobType:     params.JobType,
		Payload:     params.Payload,
		Status:      "pending",
		Priority:    params.Priority,
		MaxAttempts: params.MaxAttempts,
		ScheduledAt: params.ScheduledAt,
	}, nil
}

func TestEnqueueSendQuoteEmail(t *testing.T) {
	fake := &fakeEnqueuer{}
	quoteID := uuid.New()

	job, err := EnqueueSendQuoteEmail(context.Background(), fake, quoteID, WithPriority(PriorityHigh))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.JobType != JobTypeSendQuoteEmail {
		t.Errorf("job type = %q, want %q", job.JobType, JobTypeSendQuoteEmail)
	}
	if fake.last.Priority != PriorityHigh {
		t.Errorf("priority = %d, want %d", fake.last.Priority, PriorityHigh)
	}
	if want := fmt.Sprintf("{%q:%q}", "quote_request_id", quoteID); string(fake.last.Payload) != want {
		t.Errorf("payload = %s, want %s", fake.last.Payload, want)
	}
}

func TestEnqueueDefaults(t *testing.T) {
	fake := &fakeEnqueuer{}

	if _, err := EnqueueNotifyLead(context.Background(), fake, uuid.New(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.last.Priority != PriorityNormal {
		t.Errorf("priority = %d, want %d", fake.last.Priority, PriorityNormal)
	}
	if fake.last.MaxAttempts != 3 {
		t.Errorf("max attempts = %d, want 3", fake.last.MaxAttempts)
	}
	if fake.last.ScheduledAt.After(time.Now()) {
		t.Errorf("scheduled in the future: %v", fake.last.ScheduledAt)
	}
}
