// Package domain holds the row contracts shared by the extract, transform and
// report stages: RawEvent as read from the event log, EnrichedEvent as
// produced by the transform, and the aggregate rows rendered by the reporter.
package domain
