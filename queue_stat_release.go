//go:build !debug

package thumbq

type Stats struct{}

func statScan()      {}
func statCoalesced() {}

func SnapshotStats() Stats { return Stats{} }
func PrintStat()           {}
