//go:build linux

package thumbq

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// workerNice is the nice value applied to a low priority worker thread.
const workerNice = 10

// PinToCPU restricts the calling thread to a single CPU.
// The caller must hold its OS thread.
func PinToCPU(cpu int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu)
	return unix.SchedSetaffinity(0, &mask)
}

// lowerThreadPriority raises the nice value of the calling thread only.
// On Linux setpriority with a thread id affects that thread alone.
func lowerThreadPriority() error {
	return unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), workerNice)
}

// prepareWorkerThread locks the worker goroutine to its OS thread and
// applies the thread options. The goroutine exits without unlocking, so
// the runtime discards the tuned thread instead of reusing it.
func prepareWorkerThread(o Options) error {
	if !o.LowPriority && !o.PinWorker {
		return nil
	}
	runtime.LockOSThread()
	if o.PinWorker {
		if err := PinToCPU(o.CPU); err != nil {
			return fmt.Errorf("pin worker to cpu %d: %w", o.CPU, err)
		}
	}
	if o.LowPriority {
		if err := lowerThreadPriority(); err != nil {
			return fmt.Errorf("lower worker priority: %w", err)
		}
	}
	return nil
}
