// Package report ranks the enriched events into the job's top-N summaries.
package report

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"eventetl/internal/config"
	"eventetl/internal/engine"
	"eventetl/pkg/contracts/domain"
)

// StageName is the span and metric label of the report stage
const StageName = "etl.report"

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Summary holds the aggregates in print order
type Summary struct {
	TopN       int                `json:"top_n"`
	Rows       int                `json:"rows"`
	Schema     []domain.Field     `json:"schema"`
	Aggregates []domain.Aggregate `json:"aggregates"`
}

// Reporter computes and prints the summary
type Reporter struct {
	topN   int
	format string
	logger *slog.Logger
}

// New creates a Reporter
func New(cfg config.ReportConfig, logger *slog.Logger) *Reporter {
	if cfg.TopN <= 0 {
		cfg.TopN = config.DefaultTopN
	}
	if cfg.Format == "" {
		cfg.Format = FormatTable
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{
		topN:   cfg.TopN,
		format: cfg.Format,
		logger: logger.With(slog.String("component", "report")),
	}
}

// key groups nullable columns so that nil and "null" stay distinct
type key struct {
	value string
	valid bool
}

func keyOf(s *string) key {
	if s == nil {
		return key{}
	}
	return key{value: *s, valid: true}
}

func keyOfString(s string) key {
	return key{value: s, valid: true}
}

// Compute builds the four aggregates: countries and cities by event count,
// browsers and operating systems by distinct users.
func (r *Reporter) Compute(ctx context.Context, sess *engine.Session, table *engine.Table[domain.EnrichedEvent]) (*Summary, error) {
	byCountry, err := engine.CountBy(ctx, sess, table, func(e domain.EnrichedEvent) key { return keyOf(e.Country) })
	if err != nil {
		return nil, fmt.Errorf("count countries: %w", err)
	}
	byCity, err := engine.CountBy(ctx, sess, table, func(e domain.EnrichedEvent) key { return keyOf(e.City) })
	if err != nil {
		return nil, fmt.Errorf("count cities: %w", err)
	}

	userID := func(e domain.EnrichedEvent) string { return e.UserID }
	byBrowser, err := engine.CountDistinctBy(ctx, sess, table, func(e domain.EnrichedEvent) key { return keyOfString(e.Browser) }, userID)
	if err != nil {
		return nil, fmt.Errorf("count browsers: %w", err)
	}
	byOS, err := engine.CountDistinctBy(ctx, sess, table, func(e domain.EnrichedEvent) key { return keyOfString(e.OS) }, userID)
	if err != nil {
		return nil, fmt.Errorf("count operating systems: %w", err)
	}

	return &Summary{
		TopN:   r.topN,
		Rows:   table.Len(),
		Schema: domain.Schema(),
		Aggregates: []domain.Aggregate{
			r.aggregate(fmt.Sprintf("Top %d countries based on number of events", r.topN), "country", domain.MetricCount, byCountry),
			r.aggregate(fmt.Sprintf("Top %d cities based on number of events", r.topN), "city", domain.MetricCount, byCity),
			r.aggregate(fmt.Sprintf("Top %d Browsers based on number of unique users", r.topN), "browser", domain.MetricDistinctUsers, byBrowser),
			r.aggregate(fmt.Sprintf("Top %d Operating systems based on number of unique users", r.topN), "os", domain.MetricDistinctUsers, byOS),
		},
	}, nil
}

func (r *Reporter) aggregate(title, column string, metric domain.Metric, counts map[key]int64) domain.Aggregate {
	return domain.Aggregate{
		Title:  title,
		Column: column,
		Metric: metric,
		Rows:   rank(counts, r.topN),
		Groups: len(counts),
	}
}

// rank orders counts descending and keeps the first n. Equal counts are
// ordered by value ascending, with the null group first.
func rank(counts map[key]int64, n int) []domain.CountRow {
	rows := make([]domain.CountRow, 0, len(counts))
	for k, c := range counts {
		row := domain.CountRow{Value: k.value, Count: c}
		if !k.valid {
			row.Value, row.Null = domain.NullLabel, true
		}
		rows = append(rows, row)
	}

	slices.SortFunc(rows, func(a, b domain.CountRow) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if a.Null != b.Null {
			if a.Null {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Value, b.Value)
	})

	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// Report computes the summary and writes it to w in the configured format
func (r *Reporter) Report(ctx context.Context, sess *engine.Session, table *engine.Table[domain.EnrichedEvent], w io.Writer) error {
	ctx, end := sess.StartStage(ctx, StageName)

	summary, err := r.Compute(ctx, sess, table)
	if err != nil {
		end(0, err)
		return err
	}

	if err := Render(w, summary, r.format); err != nil {
		end(0, err)
		return err
	}
	end(table.Len(), nil)

	r.logger.InfoContext(ctx, "Report written",
		slog.Int("rows", summary.Rows),
		slog.Int("top_n", summary.TopN),
		slog.String("format", r.format))

	return nil
}
