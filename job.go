package thumbq

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// BytesPerPixel is the size of one RGB8 pixel in every buffer the
// scheduler reads or produces.
const BytesPerPixel = 3

// Buffer is a packed RGB8 pixel buffer.
//
// The scheduler never copies, frees or mutates a source Buffer. The pointer
// itself is the identity used for coalescing, so the same *Buffer must be
// passed to Submit for repeated requests on one image.
type Buffer struct {
	Pix []byte
}

// Subscriber receives resized output.
//
// Deliver is called on the worker goroutine, once per processed job.
// Ownership of pix passes to the subscriber.
//
// The dynamic type of a Subscriber must be comparable, as it is the key
// for coalescing and CancelFor. Pointer receivers are the usual choice.
type Subscriber interface {
	Deliver(pix []byte, width, height int)
}

// ResizeFunc scales src (srcW x srcH) into dst (dstW x dstH).
// dst is exactly dstW*dstH*BytesPerPixel bytes long.
type ResizeFunc func(src []byte, srcW, srcH int, dst []byte, dstW, dstH int)

// job is one pending resize request.
type job struct {
	id      uuid.UUID
	src     *Buffer
	srcW    int
	srcH    int
	targetH int
	sub     Subscriber

	// cancelled is set by CancelFor while the job is in flight.
	cancelled atomic.Bool
}

func newJob(src *Buffer, srcW, srcH, targetH int, sub Subscriber) *job {
	return &job{
		id:      uuid.New(),
		src:     src,
		srcW:    srcW,
		srcH:    srcH,
		targetH: targetH,
		sub:     sub,
	}
}

// matches reports whether j is keyed by the same (source, subscriber) pair.
func (j *job) matches(src *Buffer, sub Subscriber) bool {
	return j.src == src && j.sub == sub
}

// targetWidth keeps the source aspect ratio. Integer division truncates.
func (j *job) targetWidth() int {
	return j.targetH * j.srcW / j.srcH
}

func (j *job) info() JobInfo {
	return JobInfo{
		ID:           j.id,
		Source:       j.src,
		SourceWidth:  j.srcW,
		SourceHeight: j.srcH,
		TargetWidth:  j.targetWidth(),
		TargetHeight: j.targetH,
		Subscriber:   j.sub,
	}
}

// JobInfo is a read-only copy of a queued job.
type JobInfo struct {
	ID           uuid.UUID
	Source       *Buffer
	SourceWidth  int
	SourceHeight int
	TargetWidth  int
	TargetHeight int
	Subscriber   Subscriber
}
