//go:build !amd64

package memrate

import "unsafe"

// The x86 fast paths are absent on other architectures. Their kernels stay
// registered and permanently report invalid results without touching
// memory; the stubs below are never reached.
var (
	hasRepStos  = false
	hasNTStore  = false
	hasPrefetch = false
	hasCLFlush  = false
)

func repStos64(ptr unsafe.Pointer, val uint64, count uint64) {}

func repStos32(ptr unsafe.Pointer, val uint64, count uint64) {}

func repStos16(ptr unsafe.Pointer, val uint64, count uint64) {}

func repStos8(ptr unsafe.Pointer, val uint64, count uint64) {}

func ntStore128(ptr, val unsafe.Pointer, count uint64) {}

func ntStore64(ptr unsafe.Pointer, val uint64, count uint64) {}

func ntStore32(ptr unsafe.Pointer, val uint64, count uint64) {}

func prefetchRead64(ptr unsafe.Pointer, count uint64) {}

func clflushRegion(ptr unsafe.Pointer, size uint64, stride uint64) {}
