package memrate

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"unsafe"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/sys/unix"
)

const (
	// MinBytes is the smallest region the worker will exercise.
	MinBytes = 4 * 1024
	// MaxBytes is the implementation ceiling for the region size.
	MaxBytes = 256 << 30
	// DefaultBytes is the region size used when none is configured.
	DefaultBytes = 256 << 20
)

// RoundBytes rounds a requested region size up to the next 1024-byte
// multiple and clamps it to [MinBytes, MaxBytes]. When avail is non-zero it
// additionally caps the size to the available physical memory so a worker
// cannot be sized into guaranteed allocation failure.
func RoundBytes(n, avail uint64) uint64 {
	n = (n + 1023) &^ 1023
	if n < MinBytes {
		n = MinBytes
	}
	limit := uint64(MaxBytes)
	if avail > 0 {
		avail &^= 1023
		if avail < limit {
			limit = avail
		}
	}
	if limit < MinBytes {
		limit = MinBytes
	}
	if n > limit {
		n = limit
	}
	return n
}

// Region is the contiguous anonymous mapping one worker exercises. It is
// owned exclusively by that worker and released exactly once on any exit
// path.
type Region struct {
	mem      mmap.MMap
	released bool
}

// NewRegion maps an anonymous zero-initialized region of the given size.
// Large page backing is requested as a hint; not getting it is non-fatal.
func NewRegion(bytes uint64) (*Region, error) {
	m, err := mmap.MapRegion(nil, int(bytes), mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, fmt.Errorf("cannot allocate %dK buffer: %w", bytes/1024, err)
	}
	_ = unix.Madvise(m, unix.MADV_HUGEPAGE)
	return &Region{mem: m}, nil
}

// Seed writes a pseudo-random value into every 4-byte cell so the kernels
// exercise real pages instead of copy-on-write shared zero pages.
func (r *Region) Seed(rng *rand.Rand) {
	b := r.mem
	for off := 0; off+4 <= len(b); off += 4 {
		binary.LittleEndian.PutUint32(b[off:], rng.Uint32())
	}
}

// Base returns the start address of the region.
func (r *Region) Base() unsafe.Pointer {
	return unsafe.Pointer(&r.mem[0])
}

// Size returns the region length in bytes, always a multiple of 1024.
func (r *Region) Size() int {
	return len(r.mem)
}

// Bytes exposes the region as a byte slice.
func (r *Region) Bytes() []byte {
	return r.mem
}

// Release unmaps the region. Only the first call unmaps; later calls are
// no-ops so deferred and explicit releases cannot double-unmap.
func (r *Region) Release() error {
	if r.released {
		return nil
	}
	r.released = true
	return r.mem.Unmap()
}
