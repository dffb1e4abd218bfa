package thumbq

// WorkerState is the lifecycle of the worker goroutine.
type WorkerState int32

const (
	// StateNotStarted means no job was ever submitted.
	StateNotStarted WorkerState = iota

	// StateRunning means a worker goroutine owns the queue.
	StateRunning

	// StateStopping means Terminate asked the worker to exit and is
	// waiting for it.
	StateStopping

	// StateStopped means the last worker has exited. The next Submit
	// starts a new one.
	StateStopped
)

func (s WorkerState) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}
