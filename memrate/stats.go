package memrate

import "memstress/config"

// NewKernelStats builds one zeroed stats record per registry entry, in
// registry order, with the reporting names filled in.
func NewKernelStats() []config.KernelStats {
	stats := make([]config.KernelStats, len(registry))
	for i := range registry {
		stats[i].Name = registry[i].Name
	}
	return stats
}

// ThroughputMBs derives the cumulative rate of one kernel in MB/s. Only
// meaningful for entries with Valid set and a non-zero duration.
func ThroughputMBs(ks config.KernelStats) float64 {
	if ks.Duration <= 0 {
		return 0
	}
	return ks.KBytes / (ks.Duration * 1000)
}

// Aggregate merges the per-worker kernel stats into one table, summing
// kilobytes and durations per registry entry. An entry is valid when any
// worker's latest invocation of it was valid.
func Aggregate(instances []config.MemRateInstance) []config.KernelStats {
	agg := NewKernelStats()
	for _, inst := range instances {
		for i := range inst.Kernels {
			if i >= len(agg) {
				break
			}
			agg[i].KBytes += inst.Kernels[i].KBytes
			agg[i].Duration += inst.Kernels[i].Duration
			agg[i].Valid = agg[i].Valid || inst.Kernels[i].Valid
		}
	}
	return agg
}
