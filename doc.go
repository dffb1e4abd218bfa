// Package thumbq schedules thumbnail resizes on a single background worker.
//
// Producers submit resize requests for a source buffer on behalf of a
// subscriber and return immediately. A worker goroutine, started on demand,
// resizes each request and hands the result to the subscriber.
//
// Design goals
//
//   - Never block producers on resizing
//   - No duplicate pending work for the same (source, subscriber) pair
//   - No goroutine alive while there is nothing to do
//   - Clean teardown of subscribers and of the scheduler itself
//
// Architecture overview
//
// The scheduler is composed of three parts:
//
//  1. Job queue
//     A FIFO ring of pending jobs keyed by (source, subscriber). A second
//     request for a queued key replaces the queued dimensions and keeps its
//     place in line instead of being appended.
//
//  2. Worker
//     Pops the oldest job, resizes outside the lock and calls Deliver.
//     The worker stops itself as soon as it finds the queue empty, or
//     after an optional linger period.
//
//  3. Scheduler
//     Owns the queue and the worker lifecycle. Submit starts a worker when
//     none is running; CancelFor strips a subscriber's jobs; Terminate
//     stops the worker, joins it and discards what is left.
//
// Concurrency
//
// One mutex guards the queue, the worker state transitions and the record
// of the job in flight. It is never held while resizing or delivering.
// The worker decides to stop in the same critical section in which it sees
// the queue empty, and Submit decides to spawn in the same critical section
// in which it enqueues, so a job is never left behind by a worker that is
// about to exit, and at most one worker exists at a time.
//
// Cancellation
//
// CancelFor removes queued jobs. A job already popped for the subscriber is
// marked cancelled and its result is dropped instead of delivered, unless
// Options.AllowStaleDelivery is set. A Deliver call that has already begun
// is not interrupted, so a subscriber must still tolerate one late call
// racing with its own teardown.
//
// Terminate is cooperative: the job in flight finishes first. If that job's
// subscriber needs a section held by the goroutine calling Terminate (a UI
// lock, typically), configure Options.Handoff so the section is released
// during the join.
//
// Ownership
//
// Source buffers and subscribers are borrowed. The caller keeps a source
// buffer unchanged while a job for it is queued or in flight, and calls
// CancelFor before discarding a subscriber. The output buffer passed to
// Deliver belongs to the subscriber.
//
// Errors
//
// Submit rejects invalid input without side effects. Panics in the resize
// function or in Deliver are recovered, reported through Options.OnJobError
// and counted as dropped; the worker moves on. Nothing is retried.
package thumbq
