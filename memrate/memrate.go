package memrate

import (
	"fmt"
	"sync"
	"time"

	"memstress/config"
	"memstress/utils"
)

// keepStressing is the worker's "should continue" predicate: false once
// cancellation is observed or the operation budget is spent.
func keepStressing(stop <-chan struct{}, iterations, ops uint64) bool {
	if canceled(stop) {
		return false
	}
	return ops == 0 || iterations < ops
}

// RunMemRateStressTest runs one memory rate worker. The worker owns the
// region exclusively: it maps and seeds it, repeatedly drives every
// registered kernel over it in catalog order, records per-kernel stats into
// its own slice of perfStats, and releases the region exactly once on any
// exit path. Closing stop cancels the worker at chunk granularity from
// anywhere inside a kernel; the remainder of the current pass is skipped.
func RunMemRateStressTest(wg *sync.WaitGroup, stop chan struct{}, errorChan chan string, cfg MemRateConfig, perfStats *config.PerformanceStats, instance int) {
	defer wg.Done()

	region, err := NewRegion(cfg.Bytes)
	if err != nil {
		// Resource exhaustion: no kernels run, no statistics produced.
		errorChan <- fmt.Sprintf("Memory rate worker %d: %v", instance, err)
		return
	}
	defer region.Release()

	region.Seed(utils.NewRand(time.Now().UnixNano() + int64(instance)))

	if cfg.Debug {
		utils.LogMessage(fmt.Sprintf("Memory rate worker %d: exercising %dK buffer", instance, cfg.Bytes/1024), cfg.Debug)
	}

	inv := &Invocation{Region: region, Stop: stop}

	var iterations uint64
	for keepStressing(stop, iterations, cfg.Ops) {
		for i := range registry {
			info := &registry[i]

			if cfg.Flush {
				flushRegion(region, cfg.CacheLine)
			}

			t1 := time.Now()
			res := dispatch(info, inv, &cfg)
			dur := time.Since(t1).Seconds()

			perfStats.Lock()
			ks := &perfStats.MemRate[instance].Kernels[i]
			ks.KBytes += float64(res.KBytes)
			ks.Duration += dur
			ks.Valid = res.Valid
			perfStats.Unlock()

			if canceled(stop) {
				break
			}
		}
		iterations++
		perfStats.Lock()
		perfStats.MemRate[instance].Iterations = iterations
		perfStats.Unlock()
	}

	if cfg.Debug {
		utils.LogMessage(fmt.Sprintf("Memory rate worker %d stopped after %d iterations", instance, iterations), cfg.Debug)
	}
}
