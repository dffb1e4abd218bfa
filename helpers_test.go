package thumbq_test

import (
	"runtime"
	"sync"
	"testing"
	"time"

	tq "github.com/Andrej220/go-utils/thumbq"
)

type delivery struct {
	sub    string
	width  int
	height int
	bytes  int
}

// chanSub forwards every delivery to a shared channel so tests can observe
// cross-subscriber order.
type chanSub struct {
	name string
	ch   chan<- delivery
}

func (s *chanSub) Deliver(pix []byte, w, h int) {
	s.ch <- delivery{sub: s.name, width: w, height: h, bytes: len(pix)}
}

// gate is a resize function that blocks every call until released, so
// tests can hold the worker on an in-flight job while they shape the queue.
type gate struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate() *gate {
	return &gate{
		started: make(chan struct{}, 64),
		release: make(chan struct{}),
	}
}

func (g *gate) resize(_ []byte, _, _ int, _ []byte, _, _ int) {
	g.started <- struct{}{}
	<-g.release
}

func (g *gate) open() { g.once.Do(func() { close(g.release) }) }

func noopResize([]byte, int, int, []byte, int, int) {}

func rgb(w, h int) *tq.Buffer {
	return &tq.Buffer{Pix: make([]byte, w*h*tq.BytesPerPixel)}
}

func newTestScheduler(t *testing.T, opts tq.Options) (*tq.Scheduler[*tq.AtomicMetrics], *tq.AtomicMetrics) {
	t.Helper()

	m := &tq.AtomicMetrics{}
	s := tq.New(t.Context(), m, opts)
	t.Cleanup(s.Close)
	return s, m
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
	}
	t.Fatal("condition not satisfied before timeout")
}
