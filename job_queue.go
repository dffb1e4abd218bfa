// job_queue.go
package thumbq

const (
	initialQueueCapacity = 64
)

// jobQueue is a first-in-first-out queue of pending jobs, coalesced by
// (source, subscriber).
//
// Jobs are served strictly in the order their key first entered the queue.
// No priorities, no aging, no reordering.
//
// jobQueue is not safe for concurrent use; every method is called with the
// scheduler mutex held.
type jobQueue struct {
	buf        []*job // circular buffer
	head, tail int    // read/write indices
	size       int    // number of jobs currently buffered
	capacity   int
}

// newJobQueue creates a queue with the given initial capacity.
// The buffer doubles whenever a push finds it full.
func newJobQueue(cap int) *jobQueue {
	if cap <= 0 {
		cap = initialQueueCapacity
	}
	return &jobQueue{
		buf:      make([]*job, cap),
		capacity: cap,
	}
}

func (q *jobQueue) len() int { return q.size }

func (q *jobQueue) isEmpty() bool { return q.size == 0 }

// at returns the i-th job in service order.
func (q *jobQueue) at(i int) *job {
	return q.buf[(q.head+i)%q.capacity]
}

// find returns the queued job keyed by (src, sub), or nil.
//
// The scan is linear; depth is bounded by the number of live subscribers.
func (q *jobQueue) find(src *Buffer, sub Subscriber) *job {
	statScan()
	for i := 0; i < q.size; i++ {
		if j := q.at(i); j.matches(src, sub) {
			return j
		}
	}
	return nil
}

// upsert stores j, or, if a job with the same key is already queued,
// copies j's dimensions into it. The existing entry keeps its position.
//
// It reports whether the request was coalesced into an existing job.
func (q *jobQueue) upsert(j *job) bool {
	if old := q.find(j.src, j.sub); old != nil {
		old.srcW = j.srcW
		old.srcH = j.srcH
		old.targetH = j.targetH
		statCoalesced()
		return true
	}
	q.push(j)
	return false
}

// push inserts a job at the tail, growing the buffer when full.
func (q *jobQueue) push(j *job) {
	if q.size == q.capacity {
		q.grow()
	}
	q.buf[q.tail] = j
	q.tail++
	if q.tail == q.capacity {
		q.tail = 0
	}
	q.size++
}

// popFront removes and returns the oldest job.
//
// If the queue is empty it returns ErrEmptyQueue.
func (q *jobQueue) popFront() (*job, error) {
	if q.size == 0 {
		return nil, ErrEmptyQueue
	}
	j := q.buf[q.head]
	q.buf[q.head] = nil
	q.head++
	if q.head == q.capacity {
		q.head = 0
	}
	q.size--
	return j, nil
}

// removeAll drops every job addressed to sub and returns how many were
// removed. Survivors keep their relative order.
func (q *jobQueue) removeAll(sub Subscriber) int {
	kept := 0
	for i := 0; i < q.size; i++ {
		j := q.at(i)
		if j.sub == sub {
			continue
		}
		q.buf[(q.head+kept)%q.capacity] = j
		kept++
	}
	removed := q.size - kept
	for i := kept; i < q.size; i++ {
		q.buf[(q.head+i)%q.capacity] = nil
	}
	q.size = kept
	q.tail = (q.head + kept) % q.capacity
	return removed
}

// drain discards all queued jobs and returns how many there were.
func (q *jobQueue) drain() int {
	n := q.size
	for i := range q.buf {
		q.buf[i] = nil
	}
	q.head, q.tail, q.size = 0, 0, 0
	return n
}

// snapshot copies the queue in service order.
func (q *jobQueue) snapshot() []JobInfo {
	out := make([]JobInfo, 0, q.size)
	for i := 0; i < q.size; i++ {
		out = append(out, q.at(i).info())
	}
	return out
}

// grow doubles the capacity and unwraps the ring so head is at 0.
func (q *jobQueue) grow() {
	newCap := q.capacity * 2
	buf := make([]*job, newCap)
	for i := 0; i < q.size; i++ {
		buf[i] = q.at(i)
	}
	q.buf = buf
	q.head = 0
	q.tail = q.size
	q.capacity = newCap
}
