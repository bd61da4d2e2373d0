package memrate

import "unsafe"

// Direction says whether a kernel reads from or writes to the region.
type Direction int

const (
	DirRead Direction = iota
	DirWrite
)

// MemRateConfig configures one memory rate worker. A rate of 0 means
// unlimited (the kernel runs at maximum speed).
type MemRateConfig struct {
	Bytes     uint64 // region size, already rounded and clamped
	ReadMBs   uint64 // target read rate in MB/s, 0 = unlimited
	WriteMBs  uint64 // target write rate in MB/s, 0 = unlimited
	Flush     bool   // flush the cache before each iteration
	Ops       uint64 // stop after this many full passes, 0 = no limit
	CacheLine int    // cache line size in bytes, for the flusher
	Debug     bool
}

// Result is the outcome of a single kernel invocation. Valid is false when
// the kernel's CPU capability is absent and no memory was touched.
type Result struct {
	KBytes uint64
	Valid  bool
}

// Invocation carries the per-worker state a kernel needs: the region under
// test and the cancellation channel, checked at chunk granularity inside
// every scanning loop. The sink pointer keeps read kernel loads alive.
type Invocation struct {
	Region *Region
	Stop   <-chan struct{}

	sink unsafe.Pointer
}

// Info is one immutable registry entry: a named access pattern with a
// max-speed and a rate-limited entry point.
type Info struct {
	Name    string
	Dir     Direction
	Run     func(inv *Invocation) Result
	RunRate func(inv *Invocation, mbs uint64) Result
}
