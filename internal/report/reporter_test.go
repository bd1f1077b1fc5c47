package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventetl/internal/config"
	"eventetl/internal/engine"
	apperrors "eventetl/internal/errors"
	"eventetl/pkg/contracts/domain"
)

func event(id int64, user, os, browser string, country, city *string) domain.EnrichedEvent {
	return domain.EnrichedEvent{
		EventID: id,
		UserID:  user,
		OS:      os,
		Browser: browser,
		Country: country,
		City:    city,
	}
}

func newSession(t *testing.T) *engine.Session {
	t.Helper()
	sess := engine.NewSession(engine.Options{PartitionRows: 3})
	t.Cleanup(func() { sess.Close() })
	return sess
}

// tenEvents has countries {A: 5, B: 3, C: 2}
func tenEvents() *engine.Table[domain.EnrichedEvent] {
	a, b, c := domain.StringPtr("A"), domain.StringPtr("B"), domain.StringPtr("C")
	var events []domain.EnrichedEvent
	for i := 0; i < 5; i++ {
		events = append(events, event(int64(i), fmt.Sprintf("u%d", i%2), "Windows", "Chrome", a, domain.StringPtr("Alpha")))
	}
	for i := 5; i < 8; i++ {
		events = append(events, event(int64(i), "u1", "Linux", "Firefox", b, nil))
	}
	for i := 8; i < 10; i++ {
		events = append(events, event(int64(i), fmt.Sprintf("u%d", i), "Mac OS X", "Safari", c, domain.StringPtr("Gamma")))
	}
	return engine.FromSlice(events, 3)
}

func TestCompute(t *testing.T) {
	reporter := New(config.ReportConfig{TopN: 5}, nil)
	summary, err := reporter.Compute(context.Background(), newSession(t), tenEvents())
	require.NoError(t, err)
	require.Len(t, summary.Aggregates, 4)
	assert.Equal(t, 10, summary.Rows)

	countries := summary.Aggregates[0]
	assert.Equal(t, "Top 5 countries based on number of events", countries.Title)
	assert.Equal(t, domain.MetricCount, countries.Metric)
	assert.Equal(t, []domain.CountRow{{Value: "A", Count: 5}, {Value: "B", Count: 3}, {Value: "C", Count: 2}}, countries.Rows)

	cities := summary.Aggregates[1]
	assert.Equal(t, []domain.CountRow{
		{Value: "Alpha", Count: 5},
		{Value: domain.NullLabel, Null: true, Count: 3},
		{Value: "Gamma", Count: 2},
	}, cities.Rows)

	// Chrome: u0,u1 ; Firefox: u1 ; Safari: u8,u9
	browsers := summary.Aggregates[2]
	assert.Equal(t, "Top 5 Browsers based on number of unique users", browsers.Title)
	assert.Equal(t, domain.MetricDistinctUsers, browsers.Metric)
	assert.Equal(t, []domain.CountRow{{Value: "Chrome", Count: 2}, {Value: "Safari", Count: 2}, {Value: "Firefox", Count: 1}}, browsers.Rows)

	systems := summary.Aggregates[3]
	assert.Equal(t, "Top 5 Operating systems based on number of unique users", systems.Title)
	assert.Equal(t, []domain.CountRow{{Value: "Mac OS X", Count: 2}, {Value: "Windows", Count: 2}, {Value: "Linux", Count: 1}}, systems.Rows)
}

func TestCompute_Truncates(t *testing.T) {
	reporter := New(config.ReportConfig{TopN: 2}, nil)
	summary, err := reporter.Compute(context.Background(), newSession(t), tenEvents())
	require.NoError(t, err)

	for _, agg := range summary.Aggregates {
		assert.LessOrEqual(t, len(agg.Rows), 2, agg.Title)
		assert.Equal(t, 3, agg.Groups, agg.Title)
	}
	assert.Equal(t, "Top 2 countries based on number of events", summary.Aggregates[0].Title)
}

func TestCompute_Empty(t *testing.T) {
	reporter := New(config.ReportConfig{}, nil)
	summary, err := reporter.Compute(context.Background(), newSession(t), engine.Empty[domain.EnrichedEvent]())
	require.NoError(t, err)
	for _, agg := range summary.Aggregates {
		assert.Empty(t, agg.Rows)
	}
}

func TestRank_TieBreak(t *testing.T) {
	counts := map[key]int64{
		keyOfString("b"): 2,
		keyOfString("a"): 2,
		{}:               2,
		keyOfString("z"): 9,
		keyOfString("c"): 1,
	}
	assert.Equal(t, []domain.CountRow{
		{Value: "z", Count: 9},
		{Value: domain.NullLabel, Null: true, Count: 2},
		{Value: "a", Count: 2},
		{Value: "b", Count: 2},
	}, rank(counts, 4))
}

func TestReport_Table(t *testing.T) {
	var buf bytes.Buffer
	reporter := New(config.ReportConfig{TopN: 5, Format: FormatTable}, nil)
	require.NoError(t, reporter.Report(context.Background(), newSession(t), tenEvents(), &buf))

	out := buf.String()
	assert.Contains(t, out, "Top 5 countries based on number of events\n+-------+-----+\n|country|count|\n+-------+-----+\n|      A|    5|\n")
	assert.Contains(t, out, "|browser|count(DISTINCT user_id)|")
	assert.NotContains(t, out, "only showing")
	assert.True(t, strings.HasPrefix(out, "root\n |-- eventID: long (nullable = false)\n"))
	assert.Equal(t, 4, strings.Count(out, "Top 5 "))
}

func TestReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	reporter := New(config.ReportConfig{TopN: 5, Format: FormatJSON}, nil)
	require.NoError(t, reporter.Report(context.Background(), newSession(t), tenEvents(), &buf))

	var summary Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &summary))
	require.Len(t, summary.Aggregates, 4)
	assert.Equal(t, int64(5), summary.Aggregates[0].Rows[0].Count)
	assert.Len(t, summary.Schema, 8)
}

func TestFormatAggregate_Footer(t *testing.T) {
	agg := domain.Aggregate{
		Column: "city",
		Metric: domain.MetricCount,
		Rows:   []domain.CountRow{{Value: "Zürich", Count: 12}},
		Groups: 7,
	}
	assert.Equal(t,
		"+------+-----+\n"+
			"|  city|count|\n"+
			"+------+-----+\n"+
			"|Zürich|   12|\n"+
			"+------+-----+\n"+
			"only showing top 1 rows\n",
		FormatAggregate(agg, 1))
}

func TestRender_UnknownFormat(t *testing.T) {
	err := Render(&bytes.Buffer{}, &Summary{}, "xml")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestFormatSchema(t *testing.T) {
	got := FormatSchema([]domain.Field{{Name: "city", Type: "string", Nullable: true}})
	assert.Equal(t, "root\n |-- city: string (nullable = true)\n", got)
}
