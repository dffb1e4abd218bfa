package thumbq

import (
	"github.com/Andrej220/go-utils/thumbq/resize"
)

// Handoff is an exclusive section held by the goroutine that calls
// Terminate and also needed by subscribers to finish a delivery, such as a
// UI lock. Terminate releases it while joining the worker and acquires it
// again afterwards.
type Handoff interface {
	Release()
	Acquire()
}

// Options configure a Scheduler.
//
// All zero values are replaced with sensible defaults in FillDefaults.
type Options struct {
	// Resize scales one job. Defaults to resize.Bilinear.
	Resize ResizeFunc

	// Linger keeps an idle worker alive for a few backoff intervals
	// before it stops. The zero value stops on the first empty poll.
	Linger LingerPolicy

	// LowPriority runs the worker on a dedicated OS thread with a raised
	// nice value. Linux only; ignored elsewhere.
	LowPriority bool

	// PinWorker restricts the worker thread to CPU. Linux only.
	PinWorker bool
	CPU       int

	// Handoff, if set, is released around the join in Terminate.
	Handoff Handoff

	// AllowStaleDelivery lets a job that was already popped deliver even
	// when CancelFor ran for its subscriber in the meantime.
	AllowStaleDelivery bool

	// QueueCapacity is the initial ring size of the job queue.
	QueueCapacity int

	OnJobError      func(error)
	OnInternalError func(error)
}

func (o *Options) FillDefaults() {
	if o.Resize == nil {
		o.Resize = resize.Bilinear
	}
	if o.QueueCapacity <= 0 {
		o.QueueCapacity = initialQueueCapacity
	}
	if o.CPU < 0 {
		o.PinWorker = false
	}
	o.Linger.fillDefaults()
}
