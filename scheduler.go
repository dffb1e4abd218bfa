package thumbq

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	lg "github.com/Andrej220/go-utils/zlog"
)

// cycle is one run of the worker goroutine, from spawn to exit.
type cycle struct {
	ctx    context.Context
	cancel context.CancelFunc // stop token
	done   chan struct{}      // closed when the worker has exited

	// discarded counts jobs dropped by a stop request, set under mu.
	discarded int
}

// Scheduler turns thumbnail requests into delivered bitmaps on a single
// background worker.
//
// The worker is spawned by Submit when none is running and exits on its own
// once the queue is empty. All methods are safe for concurrent use.
type Scheduler[M MetricsPolicy] struct {
	mu    sync.Mutex
	queue *jobQueue

	// state is written only with mu held; reads may skip the lock.
	state atomic.Int32

	cur      *cycle // current or last worker cycle, guarded by mu
	inflight *job   // job popped and not yet finished, guarded by mu

	closed    atomic.Bool
	closeOnce sync.Once

	ctx     context.Context
	opts    Options
	metrics M
}

// New creates an idle scheduler. No goroutine is started until the first
// Submit.
//
// ctx is the parent of every worker cycle and the source of the logger.
// Cancelling it stops the worker as Terminate would, and later submissions
// are refused.
func New[M MetricsPolicy](ctx context.Context, metrics M, opts Options) *Scheduler[M] {
	if ctx == nil {
		ctx = context.Background()
	}
	opts.FillDefaults()
	return &Scheduler[M]{
		queue:   newJobQueue(opts.QueueCapacity),
		ctx:     ctx,
		opts:    opts,
		metrics: metrics,
	}
}

// Submit queues a resize of src (srcW x srcH) to targetH rows for sub.
//
// A request for a (src, sub) pair that is already queued replaces the
// queued dimensions and keeps its place in line. Invalid arguments are
// rejected with no side effects.
func (s *Scheduler[M]) Submit(src *Buffer, srcW, srcH, targetH int, sub Subscriber) error {
	if err := validate(src, srcW, srcH, targetH, sub); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	if err := s.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	coalesced, c, err := s.enqueue(newJob(src, srcW, srcH, targetH, sub))
	if err != nil {
		return err
	}

	s.metrics.IncSubmitted()
	if coalesced {
		s.metrics.IncCoalesced()
	}
	if c != nil {
		s.metrics.IncWorkerStarts()
		go s.work(c)
	}
	return nil
}

// enqueue upserts j and starts a worker cycle if none is alive. The closed
// flag is checked again under mu so nothing is queued once Close has
// reached Terminate.
func (s *Scheduler[M]) enqueue(j *job) (coalesced bool, c *cycle, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return false, nil, ErrClosed
	}
	coalesced = s.queue.upsert(j)
	return coalesced, s.startLocked(), nil
}

// startLocked moves a stopped or never started scheduler to running and
// returns the new cycle. It returns nil if a worker is already alive.
// The caller must hold mu.
func (s *Scheduler[M]) startLocked() *cycle {
	if !s.state.CompareAndSwap(int32(StateStopped), int32(StateRunning)) &&
		!s.state.CompareAndSwap(int32(StateNotStarted), int32(StateRunning)) {
		return nil
	}
	ctx, cancel := context.WithCancel(s.ctx)
	c := &cycle{ctx: ctx, cancel: cancel, done: make(chan struct{})}
	s.cur = c
	return c
}

// CancelFor removes every queued job addressed to sub and returns how
// many were removed.
//
// A job for sub that the worker has already popped is marked cancelled and
// will not be delivered unless Options.AllowStaleDelivery is set. A
// delivery that has already begun is not interrupted.
func (s *Scheduler[M]) CancelFor(sub Subscriber) int {
	if sub == nil || s.State() == StateNotStarted || !isComparable(sub) {
		return 0
	}

	n := s.cancelQueued(sub)
	if n > 0 {
		s.metrics.AddCancelled(int64(n))
	}
	return n
}

func (s *Scheduler[M]) cancelQueued(sub Subscriber) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.queue.removeAll(sub)
	if s.inflight != nil && s.inflight.sub == sub {
		s.inflight.cancelled.Store(true)
	}
	return n
}

// Terminate stops the worker and waits for it to exit. Jobs still queued
// when the worker sees the stop request are discarded. It does nothing if
// no job was ever submitted.
//
// The job being processed when Terminate is called runs to completion.
// Terminate must not be called from Deliver.
func (s *Scheduler[M]) Terminate() { _ = s.Shutdown(context.Background()) }

// Shutdown is Terminate bounded by ctx. If ctx ends before the worker
// exits, Shutdown returns ctx.Err(); the worker still discards the queue
// when it gets to the stop request.
func (s *Scheduler[M]) Shutdown(ctx context.Context) error {
	c, wait := s.requestStop()
	if c == nil {
		return nil
	}
	discarded := 0
	if wait {
		if err := s.join(ctx, c); err != nil {
			return err
		}
		discarded = c.discarded
	}
	lg.FromContext(s.ctx).Info("scheduler terminated", lg.Int("discarded", discarded))
	return nil
}

// requestStop fires the stop token of the running cycle. It returns the
// current cycle, nil if the scheduler never started, and whether there is a
// worker to wait for.
func (s *Scheduler[M]) requestStop() (*cycle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if WorkerState(s.state.Load()) == StateNotStarted {
		return nil, false
	}
	c := s.cur
	s.state.CompareAndSwap(int32(StateRunning), int32(StateStopping))
	if WorkerState(s.state.Load()) != StateStopping {
		return c, false
	}
	c.cancel()
	return c, true
}

// join waits for the worker of c to exit. The handoff section, if any, is
// released for the duration of the wait.
func (s *Scheduler[M]) join(ctx context.Context, c *cycle) error {
	if h := s.opts.Handoff; h != nil {
		h.Release()
		defer h.Acquire()
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close terminates the scheduler and refuses further submissions.
func (s *Scheduler[M]) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.Terminate()
	})
}

// State reports the worker lifecycle state.
func (s *Scheduler[M]) State() WorkerState { return WorkerState(s.state.Load()) }

// Len returns the number of queued jobs, not counting one in flight.
func (s *Scheduler[M]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.len()
}

// Pending returns the queued jobs in service order.
func (s *Scheduler[M]) Pending() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.snapshot()
}

// Metrics returns the metrics policy the scheduler reports to.
func (s *Scheduler[M]) Metrics() M { return s.metrics }

func validate(src *Buffer, srcW, srcH, targetH int, sub Subscriber) error {
	switch {
	case src == nil:
		return ErrNilSource
	case sub == nil:
		return ErrNilSubscriber
	case srcW <= 0 || srcH <= 0 || targetH <= 0:
		return fmt.Errorf("%w: source %dx%d, target height %d",
			ErrInvalidDimensions, srcW, srcH, targetH)
	case !fitsBuffer(srcW, srcH):
		return fmt.Errorf("%w: source %dx%d is too large",
			ErrInvalidDimensions, srcW, srcH)
	case len(src.Pix) < srcW*srcH*BytesPerPixel:
		return fmt.Errorf("%w: source %dx%d needs %d bytes, buffer has %d",
			ErrInvalidDimensions, srcW, srcH, srcW*srcH*BytesPerPixel, len(src.Pix))
	case targetH > math.MaxInt/srcW:
		return fmt.Errorf("%w: target height %d is too large", ErrInvalidDimensions, targetH)
	case !isComparable(sub):
		return fmt.Errorf("%w: %T", ErrUncomparableSubscriber, sub)
	}
	if w := targetH * srcW / srcH; w > 0 && !fitsBuffer(w, targetH) {
		return fmt.Errorf("%w: target %dx%d is too large", ErrInvalidDimensions, w, targetH)
	}
	return nil
}

// fitsBuffer reports whether a w x h RGB8 buffer length fits in an int.
// w and h must be positive.
func fitsBuffer(w, h int) bool {
	return w <= math.MaxInt/BytesPerPixel/h
}

// isComparable reports whether sub can be compared with ==. A struct whose
// interface fields hold slices, maps or funcs has a comparable type but
// panics when compared, so the check is a trial comparison.
func isComparable(sub Subscriber) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return sub == sub
}
