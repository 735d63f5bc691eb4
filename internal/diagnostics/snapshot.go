package diagnostics

import (
	"runtime"
	"time"
)

var processStart = time.Now()

// ResourceSnapshot captures the process's own resource state at a point
// in time. It accompanies crash dumps and the doctor report.
type ResourceSnapshot struct {
	Timestamp      time.Time     `json:"timestamp"`
	OpenFDs        int           `json:"open_fds"`
	MaxFDs         int           `json:"max_fds"`
	FDUsagePercent float64       `json:"fd_usage_percent"`
	Goroutines     int           `json:"goroutines"`
	HeapAllocMB    float64       `json:"heap_alloc_mb"`
	HeapInUseMB    float64       `json:"heap_in_use_mb"`
	NumGC          uint32        `json:"num_gc"`
	ProcessUptime  time.Duration `json:"process_uptime"`
}

// TakeSnapshot captures current process resource state.
func TakeSnapshot() ResourceSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	openFDs, maxFDs := CountFDs()
	fdPercent := 0.0
	if maxFDs > 0 {
		fdPercent = float64(openFDs) / float64(maxFDs) * 100
	}

	return ResourceSnapshot{
		Timestamp:      time.Now(),
		OpenFDs:        openFDs,
		MaxFDs:         maxFDs,
		FDUsagePercent: fdPercent,
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocMB:    float64(memStats.HeapAlloc) / 1024 / 1024,
		HeapInUseMB:    float64(memStats.HeapInuse) / 1024 / 1024,
		NumGC:          memStats.NumGC,
		ProcessUptime:  time.Since(processStart),
	}
}
