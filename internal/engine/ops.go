package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	apperrors "eventetl/internal/errors"
)

// maxPartitionOffset bounds the in-partition offset encoded by MonotonicID
const maxPartitionOffset = 1 << 33

// forEachPartition runs fn for partitions [0, n) with at most
// sess.Parallelism() running at once. The first error cancels the rest.
func forEachPartition(ctx context.Context, sess *Session, n int, fn func(ctx context.Context, i int) error) error {
	if err := sess.check(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sess.Parallelism())

	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}

	return g.Wait()
}

// MapPartitions applies fn to each partition concurrently. Output partition i
// is fn's result for input partition i.
func MapPartitions[T, U any](ctx context.Context, sess *Session, t *Table[T], fn func(partition int, rows []T) ([]U, error)) (*Table[U], error) {
	out := make([][]U, t.NumPartitions())

	err := forEachPartition(ctx, sess, t.NumPartitions(), func(_ context.Context, i int) error {
		rows, err := fn(i, t.partitions[i])
		if err != nil {
			return fmt.Errorf("partition %d: %w", i, err)
		}
		out[i] = rows
		return nil
	})
	if err != nil {
		return nil, apperrors.NewEngineError("map partitions failed", err)
	}

	return &Table[U]{partitions: out}, nil
}

// Map applies a pure row function to every row
func Map[T, U any](ctx context.Context, sess *Session, t *Table[T], fn func(T) U) (*Table[U], error) {
	return MapPartitions(ctx, sess, t, func(_ int, rows []T) ([]U, error) {
		out := make([]U, len(rows))
		for j, row := range rows {
			out[j] = fn(row)
		}
		return out, nil
	})
}

// Filter keeps the rows for which keep returns true, in order
func Filter[T any](ctx context.Context, sess *Session, t *Table[T], keep func(T) bool) (*Table[T], error) {
	return MapPartitions(ctx, sess, t, func(_ int, rows []T) ([]T, error) {
		out := make([]T, 0, len(rows))
		for _, row := range rows {
			if keep(row) {
				out = append(out, row)
			}
		}
		return out, nil
	})
}

// MonotonicID returns the identifier of the row at offset within partition.
// The partition index occupies the upper bits and the offset the lower 33,
// so identifiers are unique and increase in table order but are not contiguous.
func MonotonicID(partition, offset int) int64 {
	return int64(partition)<<33 | int64(offset)
}

// WithMonotonicID attaches a MonotonicID to every row via fn
func WithMonotonicID[T, U any](ctx context.Context, sess *Session, t *Table[T], fn func(id int64, row T) U) (*Table[U], error) {
	return MapPartitions(ctx, sess, t, func(partition int, rows []T) ([]U, error) {
		if len(rows) >= maxPartitionOffset {
			return nil, fmt.Errorf("partition holds %d rows, more than an id can address", len(rows))
		}
		out := make([]U, len(rows))
		for j, row := range rows {
			out[j] = fn(MonotonicID(partition, j), row)
		}
		return out, nil
	})
}
