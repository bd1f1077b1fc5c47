// Package engine is the in-process table engine behind the ETL job.
//
// A Session carries the job-wide processing context: parallelism, partition
// size, time zone, an adjustable log level, the tracer and the pipeline
// metrics. Every stage receives the Session explicitly and main closes it
// when the job ends.
//
// A Table is an immutable, partitioned collection of rows. Narrow operations
// (Map, MapPartitions, Filter, WithMonotonicID) run partitions concurrently
// and keep partition boundaries. Join, SortBy and the counting aggregates are
// barriers that need every partition before producing output.
package engine
