//go:build !linux

package thumbq

func prepareWorkerThread(_ Options) error { return nil }
