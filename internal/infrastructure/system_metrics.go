package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SystemStats is a snapshot of process resource usage
type SystemStats struct {
	GoRoutines    int64   `json:"goroutines"`
	HeapAlloc     uint64  `json:"heap_alloc_bytes"`
	SystemMemory  uint64  `json:"system_memory_bytes"`
	GCCount       uint32  `json:"gc_count"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// CollectSystemStats reads the current runtime statistics
func CollectSystemStats(startTime time.Time) SystemStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return SystemStats{
		GoRoutines:    int64(runtime.NumGoroutine()),
		HeapAlloc:     memStats.HeapAlloc,
		SystemMemory:  memStats.Sys,
		GCCount:       memStats.NumGC,
		UptimeSeconds: time.Since(startTime).Seconds(),
	}
}

// RegisterSystemMetrics exposes runtime gauges on meter. Values are read on
// each collection, so nothing runs between scrapes.
func RegisterSystemMetrics(meter metric.Meter, startTime time.Time) error {
	goRoutines, err := meter.Int64ObservableGauge("system_goroutines",
		metric.WithDescription("Number of active goroutines"))
	if err != nil {
		return err
	}
	heapAlloc, err := meter.Int64ObservableGauge("system_memory_allocated_bytes",
		metric.WithDescription("Heap bytes allocated by the Go runtime"),
		metric.WithUnit("By"))
	if err != nil {
		return err
	}
	uptime, err := meter.Float64ObservableGauge("system_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := CollectSystemStats(startTime)
		o.ObserveInt64(goRoutines, stats.GoRoutines)
		o.ObserveInt64(heapAlloc, int64(stats.HeapAlloc))
		o.ObserveFloat64(uptime, stats.UptimeSeconds)
		return nil
	}, goRoutines, heapAlloc, uptime)
	return err
}
