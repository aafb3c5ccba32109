package handler

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"exile-bot/internal/logger"
)

// processing statistics
var (
	totalMessagesProcessed int64
	totalMemberEvents      int64
	activeHandlers         atomic.Int64
	startTime              = time.Now()
)

func incrementCounter(counter *int64) {
	atomic.AddInt64(counter, 1)
}

// GetActiveHandlersCount returns the number of handlers still running.
func GetActiveHandlersCount() int64 {
	return activeHandlers.Load()
}

// ProcessingStats is a point-in-time view of the event loop.
type ProcessingStats struct {
	Uptime         time.Duration
	Messages       int64
	MemberEvents   int64
	ActiveHandlers int64
	MemoryMB       uint64
	TotalAllocMB   uint64
	SysMemoryMB    uint64
	GCRuns         uint32
	Goroutines     int
}

func GetProcessingStats() ProcessingStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return ProcessingStats{
		Uptime:         time.Since(startTime).Truncate(time.Second),
		Messages:       atomic.LoadInt64(&totalMessagesProcessed),
		MemberEvents:   atomic.LoadInt64(&totalMemberEvents),
		ActiveHandlers: GetActiveHandlersCount(),
		MemoryMB:       bToMb(m.Alloc),
		TotalAllocMB:   bToMb(m.TotalAlloc),
		SysMemoryMB:    bToMb(m.Sys),
		GCRuns:         m.NumGC,
		Goroutines:     runtime.NumGoroutine(),
	}
}

// LogProcessingStats logs the statistics every interval until stop is closed.
func LogProcessingStats(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats := GetProcessingStats()
			logger.Infof("Processing stats: %+v", stats)

			if stats.ActiveHandlers > 80 {
				logger.Warningf("High number of active handlers: %d", stats.ActiveHandlers)
			}
		}
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

// GetDetailedStatus renders the statistics for the debug page.
func GetDetailedStatus() string {
	stats := GetProcessingStats()
	return fmt.Sprintf(`=== Processing Status ===
Uptime: %s
Messages Processed: %d
Member Events: %d
Active Handlers: %d
Memory Usage: %d MB
Total Allocated: %d MB
System Memory: %d MB
GC Runs: %d
Goroutines: %d
`,
		stats.Uptime,
		stats.Messages,
		stats.MemberEvents,
		stats.ActiveHandlers,
		stats.MemoryMB,
		stats.TotalAllocMB,
		stats.SysMemoryMB,
		stats.GCRuns,
		stats.Goroutines,
	)
}
