package engine

import "slices"

// Table is an immutable, partitioned collection of rows.
// Row order is partition order, then order within a partition.
type Table[T any] struct {
	partitions [][]T
}

// FromSlice splits rows into partitions of at most partitionRows rows, keeping order
func FromSlice[T any](rows []T, partitionRows int) *Table[T] {
	if partitionRows <= 0 {
		partitionRows = len(rows)
	}

	var parts [][]T
	for start := 0; start < len(rows); start += partitionRows {
		end := min(start+partitionRows, len(rows))
		parts = append(parts, slices.Clone(rows[start:end]))
	}
	return &Table[T]{partitions: parts}
}

// FromPartitions builds a table from pre-split partitions. Empty partitions are kept.
func FromPartitions[T any](parts [][]T) *Table[T] {
	cloned := make([][]T, len(parts))
	for i, p := range parts {
		cloned[i] = slices.Clone(p)
	}
	return &Table[T]{partitions: cloned}
}

// Empty returns a table with no partitions
func Empty[T any]() *Table[T] {
	return &Table[T]{}
}

// Len returns the total row count
func (t *Table[T]) Len() int {
	n := 0
	for _, p := range t.partitions {
		n += len(p)
	}
	return n
}

// NumPartitions returns the partition count
func (t *Table[T]) NumPartitions() int {
	return len(t.partitions)
}

// Partition returns a copy of partition i
func (t *Table[T]) Partition(i int) []T {
	return slices.Clone(t.partitions[i])
}

// Rows returns a copy of every row in table order
func (t *Table[T]) Rows() []T {
	rows := make([]T, 0, t.Len())
	for _, p := range t.partitions {
		rows = append(rows, p...)
	}
	return rows
}

// Repartition returns the same rows split into partitions of partitionRows
func (t *Table[T]) Repartition(partitionRows int) *Table[T] {
	return FromSlice(t.Rows(), partitionRows)
}
