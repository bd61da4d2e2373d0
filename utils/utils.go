package utils

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"
)

// LogMessage handles both console output and file logging
func LogMessage(message string, debug bool) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	logEntry := fmt.Sprintf("%s | %s", timestamp, message)

	// Check if memstress.log already exists
	fileInfo, err := os.Stat("memstress.log")
	var creationTime string

	if os.IsNotExist(err) {
		creationTime = timestamp
		f, err := os.Create("memstress.log")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create memstress.log: %v\n", err)
			return
		}
		defer f.Close()
		if _, err := f.WriteString(fmt.Sprintf("Log file created at: %s\n", creationTime)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write creation time: %v\n", err)
		}
	} else {
		creationTime = fileInfo.ModTime().Format("2006-01-02 15:04:05")
	}

	f, err := os.OpenFile("memstress.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open memstress.log: %v\n", err)
		return
	}
	defer f.Close()

	logger := log.New(f, "", 0)
	logger.Println(logEntry)

	// Output to console for critical messages (debug == false) or when debug is enabled
	if !debug {
		fmt.Println(logEntry)
	}
}

// FormatSize converts bytes to human-readable string (KB, MB, GB)
func FormatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	if size >= GB {
		return fmt.Sprintf("%.2fGB", float64(size)/float64(GB))
	}
	if size >= MB {
		return fmt.Sprintf("%.2fMB", float64(size)/float64(MB))
	}
	if size >= KB {
		return fmt.Sprintf("%.2fKB", float64(size)/float64(KB))
	}

	return fmt.Sprintf("%dB", size)
}

// ParseSize parses size string with units (e.g., 4K, 64K, 1G)
func ParseSize(sizeStr string) (int64, error) {
	sizeStr = strings.ToUpper(strings.TrimSpace(sizeStr))
	var multiplier int64 = 1

	if strings.HasSuffix(sizeStr, "K") {
		multiplier = 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	} else if strings.HasSuffix(sizeStr, "KB") {
		multiplier = 1024
		sizeStr = sizeStr[:len(sizeStr)-2]
	} else if strings.HasSuffix(sizeStr, "M") {
		multiplier = 1024 * 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	} else if strings.HasSuffix(sizeStr, "MB") {
		multiplier = 1024 * 1024
		sizeStr = sizeStr[:len(sizeStr)-2]
	} else if strings.HasSuffix(sizeStr, "G") {
		multiplier = 1024 * 1024 * 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	} else if strings.HasSuffix(sizeStr, "GB") {
		multiplier = 1024 * 1024 * 1024
		sizeStr = sizeStr[:len(sizeStr)-2]
	}

	size, err := strconv.ParseInt(sizeStr, 10, 64)
	if err != nil {
		return 0, err
	}

	return size * multiplier, nil
}

// CacheLineSize returns the data cache line size of cpu0 in bytes.
// Falls back to 64 when sysfs is unavailable.
func CacheLineSize() int {
	data, err := os.ReadFile("/sys/devices/system/cpu/cpu0/cache/index0/coherency_line_size")
	if err != nil {
		return 64
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n <= 0 {
		return 64
	}
	return n
}

// NewRand creates a new random number generator with the given seed
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
