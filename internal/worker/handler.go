package worker

import (
	"context"
	"errors"
)

// JobHandler executes one type of background job.
type JobHandler interface {
	// Type returns the job type identifier this handler processes. It must
	// match the job_type column in the jobs table.
	Type() string

	// Handle executes the job. The payload is the raw JSON stored with the
	// job. Return a PermanentError to skip retries.
	Handle(ctx context.Context, payload []byte) error
}

// PermanentError wraps an error that must not be retried. Jobs failing with
// one are marked 'failed' immediately instead of being rescheduled.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// NewPermanentError creates a PermanentError wrapping err.
func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is, or wraps, a PermanentError.
func IsPermanent(err error) bool {
	var permErr *PermanentError
	return errors.As(err, &permErr)
}
