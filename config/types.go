// config/types.go
package config

import "sync"

// Config structure, loaded from config.json when present
type Config struct {
	Debug    bool   `json:"debug"`
	Size     string `json:"size"`
	ReadMBs  uint64 `json:"read_mbs"`
	WriteMBs uint64 `json:"write_mbs"`
	Flush    bool   `json:"flush"`
	Workers  int    `json:"workers"`
	Ops      uint64 `json:"ops"`
	Duration string `json:"duration"`
}

// TestResult structure
type TestResult struct {
	DIMM string
}

// KernelStats tracks the cumulative outcome of one access-pattern kernel.
// KBytes and Duration accumulate across invocations; Valid is overwritten
// with the latest result, so a kernel gated by a missing CPU capability
// stays invalid for the whole run.
type KernelStats struct {
	Name     string
	Duration float64 // seconds
	KBytes   float64
	Valid    bool
}

// MemRateInstance holds the statistics slice owned by one memrate worker.
// Only that worker writes it; the harness reads it under the stats lock.
type MemRateInstance struct {
	Worker     int
	Iterations uint64
	Kernels    []KernelStats
}

// PerformanceStats tracks overall performance metrics
type PerformanceStats struct {
	MemRate []MemRateInstance
	mu      sync.Mutex
}

// Lock locks the PerformanceStats mutex
func (ps *PerformanceStats) Lock() {
	ps.mu.Lock()
}

// Unlock unlocks the PerformanceStats mutex
func (ps *PerformanceStats) Unlock() {
	ps.mu.Unlock()
}
