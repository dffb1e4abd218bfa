package thumbq

import (
	"sync/atomic"
)

// MetricsPolicy defines hooks used by the scheduler to report queueing
// and delivery activity.
//
// Implementations must be safe for concurrent use.
// All methods are expected to be lightweight and non-blocking.
type MetricsPolicy interface {

	// IncSubmitted counts every accepted Submit, coalesced or not.
	IncSubmitted()

	// IncCoalesced counts submissions merged into an already queued job.
	IncCoalesced()

	// IncDelivered counts results handed to a subscriber.
	IncDelivered()

	// IncDropped counts popped jobs that were not delivered: nil or
	// cancelled subscriber, or a panic in a collaborator.
	IncDropped()

	// AddCancelled counts queued jobs removed by CancelFor or Terminate.
	AddCancelled(n int64)

	// IncWorkerStarts counts spawned worker goroutines.
	IncWorkerStarts()
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	submitted atomic.Uint64
	coalesced atomic.Uint64

	_ [48]byte // padding to avoid false sharing between producer and worker counters

	delivered    atomic.Uint64
	dropped      atomic.Uint64
	cancelled    atomic.Int64
	workerStarts atomic.Uint64
}

func (m *AtomicMetrics) Submitted() uint64    { return m.submitted.Load() }
func (m *AtomicMetrics) Coalesced() uint64    { return m.coalesced.Load() }
func (m *AtomicMetrics) Delivered() uint64    { return m.delivered.Load() }
func (m *AtomicMetrics) Dropped() uint64      { return m.dropped.Load() }
func (m *AtomicMetrics) Cancelled() int64     { return m.cancelled.Load() }
func (m *AtomicMetrics) WorkerStarts() uint64 { return m.workerStarts.Load() }

func (m *AtomicMetrics) IncSubmitted()        { m.submitted.Add(1) }
func (m *AtomicMetrics) IncCoalesced()        { m.coalesced.Add(1) }
func (m *AtomicMetrics) IncDelivered()        { m.delivered.Add(1) }
func (m *AtomicMetrics) IncDropped()          { m.dropped.Add(1) }
func (m *AtomicMetrics) AddCancelled(n int64) { m.cancelled.Add(n) }
func (m *AtomicMetrics) IncWorkerStarts()     { m.workerStarts.Add(1) }

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
type NoopMetrics struct{}

func (m *NoopMetrics) IncSubmitted()        {}
func (m *NoopMetrics) IncCoalesced()        {}
func (m *NoopMetrics) IncDelivered()        {}
func (m *NoopMetrics) IncDropped()          {}
func (m *NoopMetrics) AddCancelled(_ int64) {}
func (m *NoopMetrics) IncWorkerStarts()     {}
