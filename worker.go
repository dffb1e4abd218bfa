package thumbq

import (
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
	lg "github.com/Andrej220/go-utils/zlog"
)

// work is the body of one worker cycle. It drains the queue and exits
// when the queue is empty or the cycle's stop token fires.
func (s *Scheduler[M]) work(c *cycle) {
	defer func() {
		// Normal exits already stopped the cycle in next. This covers a
		// subscriber calling runtime.Goexit: the cycle ends and, unless a
		// stop was requested, a new one takes over the remaining jobs.
		var successor *cycle
		s.mu.Lock()
		if s.cur == c && WorkerState(s.state.Load()) != StateStopped {
			s.inflight = nil
			s.stopLocked(c)
			if !s.queue.isEmpty() {
				successor = s.startLocked()
			}
		}
		s.mu.Unlock()
		close(c.done)

		if successor != nil {
			s.metrics.IncWorkerStarts()
			go s.work(successor)
		}
	}()

	logger := lg.FromContext(s.ctx)
	if err := prepareWorkerThread(s.opts); err != nil {
		logger.Warn("worker thread setup failed", lg.Any("error", err))
		s.reportInternalError(err)
	}
	logger.Info("worker started", lg.Int("queued", s.Len()))

	lingering := s.opts.Linger.Attempts > 0
	canStop := !lingering
	processed := 0
	for {
		j, stop := s.next(c, canStop)
		if stop {
			break
		}
		if j == nil {
			// Queue is empty but lingering is allowed.
			canStop = !s.linger(c)
			continue
		}
		canStop = !lingering
		s.process(j)
		processed++
	}

	logger.Info("worker stopped",
		lg.Int("processed", processed),
		lg.Int("discarded", c.discarded),
	)
}

// next pops the head of the queue.
//
// When a stop was requested, or the queue is empty and canStop is set, next
// marks the worker stopped and reports stop. Both happen in the same
// critical section as the emptiness check, so a concurrent Submit either
// finds a running worker that will see its job or a stopped one it must
// replace. Returns (nil, false) on an empty queue the worker may wait on.
func (s *Scheduler[M]) next(c *cycle, canStop bool) (*job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inflight = nil
	if c.ctx.Err() != nil {
		s.stopLocked(c)
		return nil, true
	}
	j, err := s.queue.popFront()
	if err != nil {
		if canStop {
			s.stopLocked(c)
			return nil, true
		}
		return nil, false
	}
	s.inflight = j
	return j, false
}

// stopLocked ends cycle c. If the cycle was asked to stop, the jobs still
// queued are discarded in the same critical section, so none of them waits
// for a worker that is no longer coming. The caller must hold mu.
func (s *Scheduler[M]) stopLocked(c *cycle) {
	if c.ctx.Err() != nil {
		if n := s.queue.drain(); n > 0 {
			c.discarded += n
			s.metrics.AddCancelled(int64(n))
		}
	}
	s.state.Store(int32(StateStopped))
	c.cancel()
}

// linger waits for new jobs using backoff intervals. It reports whether a
// job arrived before the attempts ran out or the cycle was stopped.
func (s *Scheduler[M]) linger(c *cycle) bool {
	lp := s.opts.Linger
	bo := boff.New(lp.Initial, lp.Max, time.Now().UnixNano())

	for attempt := 1; attempt <= lp.Attempts; attempt++ {
		timer := time.NewTimer(bo.Next())
		select {
		case <-timer.C:
		case <-c.ctx.Done():
			if !timer.Stop() {
				<-timer.C // drain if timer is fired
			}
			return false
		}

		s.mu.Lock()
		empty := s.queue.isEmpty()
		s.mu.Unlock()
		if !empty {
			return true
		}
	}
	return false
}

// process resizes one popped job and delivers the result.
//
// Panics from the resize function or from Deliver are recovered and
// reported; the worker keeps going with the next job.
func (s *Scheduler[M]) process(j *job) {
	logger := lg.FromContext(s.ctx).With(lg.String("job", j.id.String()))
	defer func() {
		if r := recover(); r != nil {
			s.metrics.IncDropped()
			logger.Error("job panicked", lg.Any("panic", r))
			s.reportJobError(&JobPanicError{JobID: j.id, Value: r})
		}
	}()

	// Submit rejects nil subscribers; kept so a job that lost its
	// subscriber is dropped rather than dereferenced.
	if j.sub == nil {
		s.metrics.IncDropped()
		logger.Warn("subscriber gone; job dropped")
		return
	}

	w, h := j.targetWidth(), j.targetH
	pix := make([]byte, w*h*BytesPerPixel)
	s.opts.Resize(j.src.Pix, j.srcW, j.srcH, pix, w, h)

	if j.cancelled.Load() && !s.opts.AllowStaleDelivery {
		s.metrics.IncDropped()
		logger.Warn("subscriber cancelled during resize; result dropped",
			lg.Int("width", w),
			lg.Int("height", h),
		)
		return
	}

	j.sub.Deliver(pix, w, h)
	s.metrics.IncDelivered()
}
