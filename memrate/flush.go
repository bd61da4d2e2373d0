package memrate

// flushRegion evicts every cache line covering the region from all cache
// levels, so the next iteration's kernels reach main memory instead of
// cache. A no-op where the hardware offers no line flush.
func flushRegion(r *Region, lineSize int) {
	if !hasCLFlush || lineSize <= 0 {
		return
	}
	clflushRegion(r.Base(), uint64(r.Size()), uint64(lineSize))
}

// FlushSupported reports whether cache flushing does anything on this
// hardware.
func FlushSupported() bool {
	return hasCLFlush
}
