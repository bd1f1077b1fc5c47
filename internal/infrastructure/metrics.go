package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the job's row and stage instruments
type PipelineMetrics struct {
	RowsTotal         metric.Int64Counter
	RowsDropped       metric.Int64Counter
	RowDegradations   metric.Int64Counter
	StageDuration     metric.Float64Histogram
	PartitionsWritten metric.Int64Counter
}

// CreatePipelineMetrics registers the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsTotal, err := meter.Int64Counter(
		"etl_rows_total",
		metric.WithDescription("Rows produced by each pipeline stage"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"etl_rows_dropped_total",
		metric.WithDescription("Rows removed from the pipeline, by reason"),
	)
	if err != nil {
		return nil, err
	}

	degradations, err := meter.Int64Counter(
		"etl_row_degradations_total",
		metric.WithDescription("Row-level fields that degraded to null or a default label"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"etl_stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	partitions, err := meter.Int64Counter(
		"etl_partitions_total",
		metric.WithDescription("Partitions materialized by the engine"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsTotal:         rowsTotal,
		RowsDropped:       rowsDropped,
		RowDegradations:   degradations,
		StageDuration:     stageDuration,
		PartitionsWritten: partitions,
	}, nil
}

// RecordStage records the output size and duration of one stage
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, rows int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("stage", stage))
	m.RowsTotal.Add(ctx, int64(rows), attrs)
	m.StageDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordDropped records rows removed for reason
func (m *PipelineMetrics) RecordDropped(ctx context.Context, reason string, rows int) {
	if m == nil || rows == 0 {
		return
	}
	m.RowsDropped.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordDegradation records rows whose field fell back to null or a default
func (m *PipelineMetrics) RecordDegradation(ctx context.Context, field string, rows int) {
	if m == nil || rows == 0 {
		return
	}
	m.RowDegradations.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("field", field)))
}

// RecordPartitions records how many partitions a stage materialized
func (m *PipelineMetrics) RecordPartitions(ctx context.Context, stage string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.PartitionsWritten.Add(ctx, int64(n), metric.WithAttributes(attribute.String("stage", stage)))
}
