package engine

import (
	"cmp"
	"context"
	"slices"

	apperrors "eventetl/internal/errors"
)

// Join is an inner equi-join. The right table is hashed in full, then every
// left partition is probed concurrently. Output keeps the left table's
// partitioning and order; a left row matching several right rows emits one
// combined row per match, in right table order.
func Join[L, R any, K comparable, O any](
	ctx context.Context,
	sess *Session,
	left *Table[L],
	right *Table[R],
	leftKey func(L) K,
	rightKey func(R) K,
	combine func(L, R) O,
) (*Table[O], error) {
	if err := sess.check(ctx); err != nil {
		return nil, apperrors.NewEngineError("join failed", err)
	}

	index := make(map[K][]R, right.Len())
	for _, p := range right.partitions {
		for _, row := range p {
			k := rightKey(row)
			index[k] = append(index[k], row)
		}
	}

	return MapPartitions(ctx, sess, left, func(_ int, rows []L) ([]O, error) {
		out := make([]O, 0, len(rows))
		for _, l := range rows {
			for _, r := range index[leftKey(l)] {
				out = append(out, combine(l, r))
			}
		}
		return out, nil
	})
}

// SortBy returns the rows ordered by compare. The sort is stable, and the
// result is re-split into partitions of the session's partition size.
func SortBy[T any](ctx context.Context, sess *Session, t *Table[T], compare func(a, b T) int) (*Table[T], error) {
	if err := sess.check(ctx); err != nil {
		return nil, apperrors.NewEngineError("sort failed", err)
	}

	rows := t.Rows()
	slices.SortStableFunc(rows, compare)

	return FromSlice(rows, sess.PartitionRows()), nil
}

// SortByKey sorts ascending on an ordered key
func SortByKey[T any, K cmp.Ordered](ctx context.Context, sess *Session, t *Table[T], key func(T) K) (*Table[T], error) {
	return SortBy(ctx, sess, t, func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	})
}
