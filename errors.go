package thumbq

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrEmptyQueue is returned by the queue when there is nothing to pop.
	// The worker treats it as the signal to stop, never as a failure.
	ErrEmptyQueue = errors.New("thumbq: queue is empty")

	// ErrInvalidDimensions is returned by Submit when a width or height
	// is not positive.
	ErrInvalidDimensions = errors.New("thumbq: invalid dimensions")

	// ErrNilSource is returned by Submit when the source buffer is nil.
	ErrNilSource = errors.New("thumbq: source buffer is nil")

	// ErrNilSubscriber is returned by Submit when the subscriber is nil.
	ErrNilSubscriber = errors.New("thumbq: subscriber is nil")

	// ErrUncomparableSubscriber is returned by Submit when the subscriber's
	// dynamic type cannot be used as a map or equality key.
	ErrUncomparableSubscriber = errors.New("thumbq: subscriber type is not comparable")

	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("thumbq: scheduler closed")
)

// JobPanicError wraps a value recovered from the resize function or from
// a subscriber's Deliver.
type JobPanicError struct {
	JobID uuid.UUID
	Value any
}

func (e *JobPanicError) Error() string {
	return fmt.Sprintf("thumbq: job %s panicked: %v", e.JobID, e.Value)
}

// reportInternalError reports a scheduler failure unrelated to a job,
// such as a worker thread setup error.
// If no handler is registered, the error is silently ignored.
func (s *Scheduler[M]) reportInternalError(e error) {
	if s.opts.OnInternalError != nil {
		s.opts.OnInternalError(e)
	}
}

// reportJobError reports a failure produced by panic recovery around the
// resize function or delivery. It does not stop the worker.
func (s *Scheduler[M]) reportJobError(err error) {
	if s.opts.OnJobError != nil {
		s.opts.OnJobError(err)
	}
}
