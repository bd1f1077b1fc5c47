package engine

import (
	"context"
	"sync"

	apperrors "eventetl/internal/errors"
)

// CountBy counts rows per key. Partitions are counted concurrently and merged.
func CountBy[T any, K comparable](ctx context.Context, sess *Session, t *Table[T], key func(T) K) (map[K]int64, error) {
	var mu sync.Mutex
	counts := make(map[K]int64)

	err := forEachPartition(ctx, sess, t.NumPartitions(), func(_ context.Context, i int) error {
		local := make(map[K]int64)
		for _, row := range t.partitions[i] {
			local[key(row)]++
		}

		mu.Lock()
		defer mu.Unlock()
		for k, n := range local {
			counts[k] += n
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewEngineError("count failed", err)
	}

	return counts, nil
}

// CountDistinctBy counts distinct values per key
func CountDistinctBy[T any, K comparable, V comparable](ctx context.Context, sess *Session, t *Table[T], key func(T) K, value func(T) V) (map[K]int64, error) {
	var mu sync.Mutex
	sets := make(map[K]map[V]struct{})

	err := forEachPartition(ctx, sess, t.NumPartitions(), func(_ context.Context, i int) error {
		local := make(map[K]map[V]struct{})
		for _, row := range t.partitions[i] {
			k := key(row)
			if local[k] == nil {
				local[k] = make(map[V]struct{})
			}
			local[k][value(row)] = struct{}{}
		}

		mu.Lock()
		defer mu.Unlock()
		for k, vs := range local {
			if sets[k] == nil {
				sets[k] = make(map[V]struct{}, len(vs))
			}
			for v := range vs {
				sets[k][v] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewEngineError("count distinct failed", err)
	}

	counts := make(map[K]int64, len(sets))
	for k, vs := range sets {
		counts[k] = int64(len(vs))
	}
	return counts, nil
}
