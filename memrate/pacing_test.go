package memrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChunkGroups(t *testing.T) {
	tests := []struct {
		name     string
		size     uint64
		group    uint64
		expected uint64
	}{
		// 16 MiB / 8-byte elements: 128 KiB divides evenly and fits the
		// group count exactly.
		{"16MiB group 128", 16 * mb, 128, 131072},
		// 10 MiB: 64 KiB is the largest power of two that both divides
		// and fits under the group count.
		{"10MiB group 128", 10 * mb, 128, 65536},
		// 1 MiB / single-byte groups.
		{"1MiB group 16", mb, 16, 65536},
		// Region too small for any power-of-two candidate to fit the
		// group count: fall back to the whole region in one chunk.
		{"3KiB group 128", 3 * 1024, 128, 24},
		{"4KiB group 2048", 4 * 1024, 2048, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, chunkGroups(tt.size, tt.group))
		})
	}
}

func TestPacerSleepsOffResidual(t *testing.T) {
	stop := make(chan struct{})

	// 1 MiB chunks at 20 MB/s: 50ms ideal per chunk. Two instantaneous
	// chunks must take at least ~100ms of wall time.
	p := newPacer(mb, 20, stop)
	start := time.Now()
	assert.True(t, p.pace())
	assert.True(t, p.pace())
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
}

func TestPacerNeverAccelerates(t *testing.T) {
	stop := make(chan struct{})

	// Tiny ideal per chunk with real time already elapsed: the pacer is
	// behind schedule and must return immediately without sleeping.
	p := newPacer(1024, 1000000, stop)
	time.Sleep(5 * time.Millisecond)

	start := time.Now()
	assert.True(t, p.pace())
	assert.Less(t, time.Since(start), 5*time.Millisecond)
}

func TestPacerStopDuringSleep(t *testing.T) {
	stop := make(chan struct{})

	// 10 second ideal sleep; cancellation must cut it short.
	p := newPacer(10*mb, 1, stop)
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(stop)
	}()

	start := time.Now()
	assert.False(t, p.pace())
	assert.Less(t, time.Since(start), time.Second)
}

func TestPacerStopWhenBehind(t *testing.T) {
	stop := make(chan struct{})
	close(stop)

	p := newPacer(1024, 1000000, stop)
	time.Sleep(time.Millisecond)
	assert.False(t, p.pace())
}

func TestCanceled(t *testing.T) {
	stop := make(chan struct{})
	assert.False(t, canceled(stop))
	close(stop)
	assert.True(t, canceled(stop))
}
