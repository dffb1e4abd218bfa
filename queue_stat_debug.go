//go:build debug

package thumbq

import (
	"sync/atomic"
)

var (
	scans     atomic.Int64
	coalesced atomic.Int64
)

// Stats counts queue lookups in debug builds.
type Stats struct {
	Scans     int64
	Coalesced int64
}

func statScan()      { scans.Add(1) }
func statCoalesced() { coalesced.Add(1) }

func SnapshotStats() Stats {
	return Stats{
		Scans:     scans.Load(),
		Coalesced: coalesced.Load(),
	}
}

func PrintStat() {
	println(
		"scans / coalesced :",
		scans.Load(),
		coalesced.Load(),
	)
}
