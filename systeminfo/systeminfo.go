package systeminfo

import (
	"fmt"

	gcpu "github.com/shirou/gopsutil/v4/cpu"
	gmem "github.com/shirou/gopsutil/v4/mem"
)

// SystemInfo holds information about the CPU and memory available for
// memory rate stress testing.
type SystemInfo struct {
	CPUInfo    string
	MemoryInfo string
}

// GetSystemInfo retrieves system resource information for stress testing.
func GetSystemInfo() SystemInfo {
	var info SystemInfo

	// CPU information
	cpuInfo, err := gcpu.Info()
	if err != nil || len(cpuInfo) == 0 {
		info.CPUInfo = "CPU Info: Unable to retrieve CPU information"
	} else {
		totalCores, _ := gcpu.Counts(true)
		info.CPUInfo = fmt.Sprintf("CPU Info: Model: %s, Cores: %d, Frequency: %.2f MHz",
			cpuInfo[0].ModelName, totalCores, cpuInfo[0].Mhz)
	}

	// Memory information
	vm, err := gmem.VirtualMemory()
	if err != nil {
		info.MemoryInfo = "Memory Info: Unable to retrieve memory information"
	} else {
		info.MemoryInfo = fmt.Sprintf("Memory Info: Total: %.2f GB, Available for stress: %.2f GB (%.1f%%)",
			float64(vm.Total)/(1024*1024*1024),
			float64(vm.Available)/(1024*1024*1024),
			float64(vm.Available)/float64(vm.Total)*100)
	}

	return info
}

// AvailableMemory returns the number of bytes of physical memory currently
// available, or 0 when it cannot be determined.
func AvailableMemory() uint64 {
	vm, err := gmem.VirtualMemory()
	if err != nil {
		return 0
	}
	return vm.Available
}
