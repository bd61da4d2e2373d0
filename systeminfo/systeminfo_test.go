package systeminfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSystemInfo(t *testing.T) {
	info := GetSystemInfo()
	assert.NotEmpty(t, info.CPUInfo)
	assert.NotEmpty(t, info.MemoryInfo)
}

func TestAvailableMemory(t *testing.T) {
	avail := AvailableMemory()
	assert.Greater(t, avail, uint64(0))
}
