package main

import (
	"flag"
	"fmt"
	"sync"
	"time"

	cfg "memstress/config"
	"memstress/memrate"
	"memstress/systeminfo"
	"memstress/utils"
)

const maxRateMBs = 1000000

func main() {
	var sizeStr string
	var rdMBs uint64
	var wrMBs uint64
	var flush bool
	var workers int
	var ops uint64
	var duration string
	var debugFlag bool
	var showHelp bool
	var printSystemInfo bool

	flag.StringVar(&sizeStr, "size", "256MB", "Size of the memory buffer being exercised (supports K, M, G units)")
	flag.Uint64Var(&rdMBs, "rd-mbs", 0, "Read rate from buffer in megabytes per second (0 = unlimited)")
	flag.Uint64Var(&wrMBs, "wr-mbs", 0, "Write rate to buffer in megabytes per second (0 = unlimited)")
	flag.BoolVar(&flush, "flush", false, "Flush cache before each iteration")
	flag.IntVar(&workers, "workers", 1, "Number of memory rate workers")
	flag.Uint64Var(&ops, "ops", 0, "Stop after N full kernel passes per worker (0 = no limit)")
	flag.StringVar(&duration, "duration", "10m", "Test duration (e.g. 30s, 5m, 1h)")
	flag.BoolVar(&debugFlag, "d", false, "Enable debug mode")
	flag.BoolVar(&showHelp, "h", false, "Show help")
	flag.BoolVar(&printSystemInfo, "print", false, "Print available system resources for stress testing (alias: -list)")
	flag.BoolVar(&printSystemInfo, "list", false, "Alias for -print")
	flag.Parse()

	if printSystemInfo {
		fmt.Println("=== System Resources Available for Stress Testing ===")
		info := systeminfo.GetSystemInfo()
		fmt.Println(info.CPUInfo)
		fmt.Println(info.MemoryInfo)
		return
	}

	if showHelp {
		fmt.Println("Memory Rate Stress Test Tool")
		fmt.Println("Usage: memstress [options]")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		fmt.Println("\nUse -print or -list to view available system resources.")
		return
	}

	configuration, err := cfg.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config.json, using default settings: %v\n", err)
	}

	debug := debugFlag || configuration.Debug

	// CLI flags win; config.json fills in whatever was left at its default.
	if sizeStr == "256MB" && configuration.Size != "" {
		sizeStr = configuration.Size
	}
	if rdMBs == 0 && configuration.ReadMBs != 0 {
		rdMBs = configuration.ReadMBs
	}
	if wrMBs == 0 && configuration.WriteMBs != 0 {
		wrMBs = configuration.WriteMBs
	}
	if !flush && configuration.Flush {
		flush = true
	}
	if workers == 1 && configuration.Workers > 1 {
		workers = configuration.Workers
	}
	if ops == 0 && configuration.Ops != 0 {
		ops = configuration.Ops
	}
	if duration == "10m" && configuration.Duration != "" {
		duration = configuration.Duration
	}

	testDuration, err := time.ParseDuration(duration)
	if err != nil {
		utils.LogMessage(fmt.Sprintf("Invalid duration format: %s, using default 10 minutes", duration), true)
		testDuration = 10 * time.Minute
	}

	if rdMBs > maxRateMBs {
		utils.LogMessage(fmt.Sprintf("Read rate %d MB/s out of range (1..%d), using unlimited", rdMBs, maxRateMBs), true)
		rdMBs = 0
	}
	if wrMBs > maxRateMBs {
		utils.LogMessage(fmt.Sprintf("Write rate %d MB/s out of range (1..%d), using unlimited", wrMBs, maxRateMBs), true)
		wrMBs = 0
	}
	if workers < 1 {
		workers = 1
	}

	sizeBytes, err := utils.ParseSize(sizeStr)
	if err != nil || sizeBytes <= 0 {
		utils.LogMessage(fmt.Sprintf("Invalid buffer size %q, using default 256MB", sizeStr), true)
		sizeBytes = memrate.DefaultBytes
	}

	// Cap each worker's region to its share of available physical memory.
	avail := systeminfo.AvailableMemory()
	if workers > 1 && avail > 0 {
		avail /= uint64(workers)
	}
	regionBytes := memrate.RoundBytes(uint64(sizeBytes), avail)
	if regionBytes != uint64(sizeBytes) {
		utils.LogMessage(fmt.Sprintf("Buffer size adjusted from %s to %s",
			utils.FormatSize(sizeBytes), utils.FormatSize(int64(regionBytes))), debug)
	}

	flushState := "disabled"
	if flush {
		flushState = "enabled"
	}
	utils.LogMessage(fmt.Sprintf("memrate: using buffer size of %dK, cache flushing %s", regionBytes/1024, flushState), true)
	if regionBytes > 1024*1024 && regionBytes%(1024*1024) != 0 {
		utils.LogMessage("memrate: for optimal speed, use multiples of 1 MB for -size", true)
	}
	if !flush {
		utils.LogMessage("memrate: cache flushing can be enabled with the -flush option", true)
	}
	utils.LogMessage(fmt.Sprintf("Starting memory rate stress test for %v with %d worker(s)...", testDuration, workers), true)
	utils.LogMessage(fmt.Sprintf("Debug mode: %v", debug), debug)

	memConfig := memrate.MemRateConfig{
		Bytes:     regionBytes,
		ReadMBs:   rdMBs,
		WriteMBs:  wrMBs,
		Flush:     flush,
		Ops:       ops,
		CacheLine: utils.CacheLineSize(),
		Debug:     debug,
	}

	perfStats := &cfg.PerformanceStats{
		MemRate: make([]cfg.MemRateInstance, workers),
	}
	for i := 0; i < workers; i++ {
		perfStats.MemRate[i] = cfg.MemRateInstance{
			Worker:  i,
			Kernels: memrate.NewKernelStats(),
		}
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errorChan := make(chan string, 100)

	results := cfg.TestResult{DIMM: "PASS"}
	var errorDetails []string
	var errMu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go memrate.RunMemRateStressTest(&wg, stop, errorChan, memConfig, perfStats, i)
	}

	go func() {
		for err := range errorChan {
			if err == "" {
				continue
			}
			errMu.Lock()
			results.DIMM = "FAIL"
			errorDetails = append(errorDetails, err)
			errMu.Unlock()
			utils.LogMessage(fmt.Sprintf("Error detected: %s", err), debug)
		}
	}()

	progressTicker := time.NewTicker(30 * time.Second)
	go func() {
		for {
			select {
			case <-progressTicker.C:
				perfStats.Lock()
				agg := memrate.Aggregate(perfStats.MemRate)
				var iterations uint64
				for _, inst := range perfStats.MemRate {
					iterations += inst.Iterations
				}
				perfStats.Unlock()

				var bestRead, bestWrite float64
				for _, ks := range agg {
					if !ks.Valid || ks.Duration <= 0 {
						continue
					}
					rate := memrate.ThroughputMBs(ks)
					if ks.Name[0] == 'r' {
						if rate > bestRead {
							bestRead = rate
						}
					} else if rate > bestWrite {
						bestWrite = rate
					}
				}
				utils.LogMessage(fmt.Sprintf("Progress update - Memory: R=%.2f MB/s W=%.2f MB/s, iterations: %d",
					bestRead, bestWrite, iterations), true)

			case <-stop:
				progressTicker.Stop()
				return
			}
		}
	}()

	startTime := time.Now()
	time.Sleep(testDuration)
	close(stop)
	wg.Wait()
	close(errorChan)

	elapsedTime := time.Since(startTime)

	utils.LogMessage("=== PERFORMANCE RESULTS ===", true)
	printMemRateResults(perfStats)

	resultStr := fmt.Sprintf("Stress Test Summary - Duration: %s | DIMM: %s",
		elapsedTime.Round(time.Second), results.DIMM)
	errMu.Lock()
	if len(errorDetails) > 0 {
		resultStr += fmt.Sprintf("\nDIMM FAIL reason: %s", errorDetails[0])
		if len(errorDetails) > 1 {
			resultStr += fmt.Sprintf(" (and %d more errors)", len(errorDetails)-1)
		}
	}
	errMu.Unlock()

	utils.LogMessage(resultStr, true)
	utils.LogMessage("Stress test completed!", true)
}

// printMemRateResults reports one line per kernel: its cumulative rate, or
// an interrupted notice when it never completed a measurement. Kernels that
// are invalid because the CPU capability is absent are omitted.
func printMemRateResults(perfStats *cfg.PerformanceStats) {
	perfStats.Lock()
	agg := memrate.Aggregate(perfStats.MemRate)
	perfStats.Unlock()

	for _, ks := range agg {
		if !ks.Valid {
			continue
		}
		if ks.Duration > 0 {
			utils.LogMessage(fmt.Sprintf("memrate: %-12s %10.2f MB per sec", ks.Name, memrate.ThroughputMBs(ks)), true)
		} else {
			utils.LogMessage(fmt.Sprintf("memrate: %10.10s: interrupted early", ks.Name), true)
		}
	}
}
