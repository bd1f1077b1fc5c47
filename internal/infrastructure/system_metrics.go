package infrastructure

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics records a process snapshot once per job run
type RuntimeMetrics struct {
	goRoutines     metric.Int64Gauge
	heapInUse      metric.Int64Gauge
	totalAllocated metric.Int64Gauge
	gcCount        metric.Int64Gauge
	jobDuration    metric.Float64Gauge
}

// RuntimeStats is a point-in-time view of the Go runtime
type RuntimeStats struct {
	GoRoutines     int64
	HeapInUse      int64
	TotalAllocated int64
	GCCount        uint32
	JobDuration    time.Duration
}

// NewRuntimeMetrics registers the runtime gauges on meter
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	goRoutines, err := meter.Int64Gauge(
		"etl_runtime_goroutines",
		metric.WithDescription("Goroutines alive at the end of the run"),
	)
	if err != nil {
		return nil, err
	}

	heapInUse, err := meter.Int64Gauge(
		"etl_runtime_heap_inuse_bytes",
		metric.WithDescription("Heap bytes in use at the end of the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	totalAllocated, err := meter.Int64Gauge(
		"etl_runtime_allocated_bytes",
		metric.WithDescription("Cumulative bytes allocated during the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"etl_runtime_gc_cycles",
		metric.WithDescription("Completed GC cycles"),
	)
	if err != nil {
		return nil, err
	}

	jobDuration, err := meter.Float64Gauge(
		"etl_job_duration_seconds",
		metric.WithDescription("Wall-clock duration of the job"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		goRoutines:     goRoutines,
		heapInUse:      heapInUse,
		totalAllocated: totalAllocated,
		gcCount:        gcCount,
		jobDuration:    jobDuration,
	}, nil
}

// Collect reads runtime statistics and records them
func (rm *RuntimeMetrics) Collect(ctx context.Context, startTime time.Time) *RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := &RuntimeStats{
		GoRoutines:     int64(runtime.NumGoroutine()),
		HeapInUse:      int64(memStats.HeapInuse),
		TotalAllocated: int64(memStats.TotalAlloc),
		GCCount:        memStats.NumGC,
		JobDuration:    time.Since(startTime),
	}

	if rm != nil {
		rm.goRoutines.Record(ctx, stats.GoRoutines)
		rm.heapInUse.Record(ctx, stats.HeapInUse)
		rm.totalAllocated.Record(ctx, stats.TotalAllocated)
		rm.gcCount.Record(ctx, int64(stats.GCCount))
		rm.jobDuration.Record(ctx, stats.JobDuration.Seconds())
	}

	return stats
}

// LogValue renders the snapshot as a log group
func (stats *RuntimeStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("goroutines", stats.GoRoutines),
		slog.Int64("heap_inuse_mb", stats.HeapInUse/1024/1024),
		slog.Int64("allocated_mb", stats.TotalAllocated/1024/1024),
		slog.Uint64("gc_cycles", uint64(stats.GCCount)),
		slog.Int64("duration_ms", stats.JobDuration.Milliseconds()),
	)
}
