//go:build amd64

package memrate

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// Capability flags for the x86 fast paths, probed once at startup. Every
// kernel checks its flag before touching memory, so a single build runs
// correctly across heterogeneous hardware.
var (
	hasRepStos  bool
	hasNTStore  bool
	hasPrefetch bool
	hasCLFlush  bool
)

func init() {
	hasRepStos = true
	hasPrefetch = true
	hasNTStore = cpu.X86.HasSSE2
	hasCLFlush = cpu.X86.HasSSE2
}

// repStos64 stores the low 8 bytes of val count times with REP STOSQ.
//
//go:noescape
func repStos64(ptr unsafe.Pointer, val uint64, count uint64)

// repStos32 stores the low 4 bytes of val count times with REP STOSL.
//
//go:noescape
func repStos32(ptr unsafe.Pointer, val uint64, count uint64)

// repStos16 stores the low 2 bytes of val count times with REP STOSW.
//
//go:noescape
func repStos16(ptr unsafe.Pointer, val uint64, count uint64)

// repStos8 stores the low byte of val count times with REP STOSB.
//
//go:noescape
func repStos8(ptr unsafe.Pointer, val uint64, count uint64)

// ntStore128 streams the 16-byte pattern at val to count consecutive
// 16-byte slots with MOVNTDQ, bypassing the cache. count must be a
// positive multiple of 16 and ptr 16-byte aligned.
//
//go:noescape
func ntStore128(ptr, val unsafe.Pointer, count uint64)

// ntStore64 streams val to count consecutive 8-byte slots with MOVNTI.
// count must be a positive multiple of 16.
//
//go:noescape
func ntStore64(ptr unsafe.Pointer, val uint64, count uint64)

// ntStore32 streams the low 4 bytes of val to count consecutive 4-byte
// slots with MOVNTI. count must be a positive multiple of 16.
//
//go:noescape
func ntStore32(ptr unsafe.Pointer, val uint64, count uint64)

// prefetchRead64 reads count 8-byte words starting at ptr, prefetching
// 2 KiB ahead of the cursor. count must be a positive multiple of 16.
//
//go:noescape
func prefetchRead64(ptr unsafe.Pointer, count uint64)

// clflushRegion evicts every cache line in [ptr, ptr+size) from all cache
// levels, walking at the given line stride.
//
//go:noescape
func clflushRegion(ptr unsafe.Pointer, size uint64, stride uint64)
