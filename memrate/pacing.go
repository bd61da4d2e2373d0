package memrate

import "time"

const mb = 1024 * 1024

// maxSpeedChunk is how many bytes a max-speed kernel processes between
// cancellation checks.
const maxSpeedChunk = mb

// chunkGroups picks how many unrolled element groups a rate-limited kernel
// processes per pacing chunk. group is the byte size of one unrolled group
// (element width times 16). It prefers the largest power-of-two byte size
// from 1 MiB down to 1 KiB that evenly divides the region, clamped to the
// total group count; otherwise it falls back to the total group count.
// The power-of-two candidate is a byte count compared against a group
// count, so the chosen chunk is a best fit rather than exact and pacing
// accuracy degrades on non-power-of-two region sizes. That matches the
// long-standing behavior of this workload and is kept deliberately.
func chunkGroups(size, group uint64) uint64 {
	best := size / group
	for shift := uint(20); shift >= 10; shift-- {
		if (size>>shift)<<shift == size {
			n := uint64(1) << shift
			if n <= best {
				return n
			}
		}
	}
	return best
}

// pacer throttles a kernel toward a target rate. After each chunk the
// kernel calls pace, which accumulates the ideal chunk duration and sleeps
// off the residual between ideal and actual elapsed time. The pacer only
// ever slows work down; when the kernel is behind schedule it does not try
// to catch up. Drift is local to one invocation.
type pacer struct {
	start      time.Time
	ideal      float64 // ideal seconds per chunk
	totalIdeal float64
	stop       <-chan struct{}
}

// newPacer starts pacing a kernel invocation that processes chunkBytes per
// chunk toward mbs MB/s. The clock starts here, before the first chunk.
func newPacer(chunkBytes, mbs uint64, stop <-chan struct{}) *pacer {
	return &pacer{
		start: time.Now(),
		ideal: float64(chunkBytes) / (mb * float64(mbs)),
		stop:  stop,
	}
}

// pace accounts for one completed chunk and sleeps off any schedule
// surplus. It reports false when cancellation was observed, either during
// the sleep or at the chunk boundary.
func (p *pacer) pace() bool {
	p.totalIdeal += p.ideal
	residual := p.totalIdeal - time.Since(p.start).Seconds()
	if residual < 0 {
		return !canceled(p.stop)
	}
	t := time.NewTimer(time.Duration(residual * float64(time.Second)))
	defer t.Stop()
	select {
	case <-p.stop:
		return false
	case <-t.C:
		return true
	}
}

// canceled is the cooperative cancellation checkpoint used at chunk
// granularity inside every kernel loop.
func canceled(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
