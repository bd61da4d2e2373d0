package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"4K", 4 * 1024},
		{"64K", 64 * 1024},
		{"64KB", 64 * 1024},
		{"1M", 1024 * 1024},
		{"256MB", 256 * 1024 * 1024},
		{"1G", 1024 * 1024 * 1024},
		{"2GB", 2 * 1024 * 1024 * 1024},
		{"100", 100},
		{" 8k ", 8 * 1024},
	}

	for _, tt := range tests {
		size, err := ParseSize(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, size, "input %q", tt.input)
	}
}

func TestParseSizeInvalid(t *testing.T) {
	_, err := ParseSize("abc")
	assert.Error(t, err)

	_, err = ParseSize("12X")
	assert.Error(t, err)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512B", FormatSize(512))
	assert.Equal(t, "2.00KB", FormatSize(2048))
	assert.Equal(t, "256.00MB", FormatSize(256*1024*1024))
	assert.Equal(t, "1.50GB", FormatSize(1536*1024*1024))
}

func TestCacheLineSize(t *testing.T) {
	n := CacheLineSize()
	assert.Greater(t, n, 0)
	// Cache lines are powers of two on anything this tool runs on.
	assert.Zero(t, n&(n-1))
}

func TestNewRandDeterministic(t *testing.T) {
	a := NewRand(42)
	b := NewRand(42)
	for i := 0; i < 16; i++ {
		assert.Equal(t, a.Uint32(), b.Uint32())
	}
}
