package domain

// NullLabel is how a nil grouping key is labelled in aggregate output.
const NullLabel = "null"

// Metric identifies how an aggregate counts rows.
type Metric string

const (
	// MetricCount counts rows per group.
	MetricCount Metric = "count"
	// MetricDistinctUsers counts distinct user_id values per group.
	MetricDistinctUsers Metric = "count(DISTINCT user_id)"
)

// CountRow is one line of a top-N aggregate.
// Null marks the group of nil keys, whose Value is NullLabel.
type CountRow struct {
	Value string `json:"value"`
	Null  bool   `json:"null,omitempty"`
	Count int64  `json:"count"`
}

// Aggregate is a titled, ranked top-N list for one column.
type Aggregate struct {
	Title  string     `json:"title"`
	Column string     `json:"column"`
	Metric Metric     `json:"metric"`
	Rows   []CountRow `json:"rows"`
	// Groups is the number of distinct keys before truncation to top N.
	Groups int `json:"groups"`
}
