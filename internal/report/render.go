package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "eventetl/internal/errors"
	"eventetl/pkg/contracts/domain"
)

// Render writes summary to w as boxed tables or as indented JSON
func Render(w io.Writer, summary *Summary, format string) error {
	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(summary)
	case FormatTable, "":
		err = renderTables(w, summary)
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unknown report format %q", format), nil)
	}
	if err != nil {
		return apperrors.NewIOError("failed to write report", err)
	}
	return nil
}

func renderTables(w io.Writer, summary *Summary) error {
	if len(summary.Schema) > 0 {
		if _, err := io.WriteString(w, FormatSchema(summary.Schema)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	for _, agg := range summary.Aggregates {
		if _, err := fmt.Fprintln(w, agg.Title); err != nil {
			return err
		}
		if _, err := io.WriteString(w, FormatAggregate(agg, summary.TopN)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// FormatAggregate draws agg as a boxed, right-aligned two-column table
func FormatAggregate(agg domain.Aggregate, topN int) string {
	header := []string{agg.Column, string(agg.Metric)}
	cells := make([][]string, 0, len(agg.Rows))
	for _, row := range agg.Rows {
		cells = append(cells, []string{row.Value, strconv.FormatInt(row.Count, 10)})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = max(widths[i], utf8.RuneCountInString(h))
	}
	for _, line := range cells {
		for i, c := range line {
			widths[i] = max(widths[i], utf8.RuneCountInString(c))
		}
	}

	var b strings.Builder
	border := func() {
		b.WriteByte('+')
		for _, width := range widths {
			b.WriteString(strings.Repeat("-", width))
			b.WriteByte('+')
		}
		b.WriteByte('\n')
	}
	line := func(values []string) {
		b.WriteByte('|')
		for i, v := range values {
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(v)))
			b.WriteString(v)
			b.WriteByte('|')
		}
		b.WriteByte('\n')
	}

	border()
	line(header)
	border()
	for _, c := range cells {
		line(c)
	}
	border()

	if agg.Groups > topN {
		fmt.Fprintf(&b, "only showing top %d rows\n", topN)
	}
	return b.String()
}

// FormatSchema draws the column list as an indented tree
func FormatSchema(fields []domain.Field) string {
	var b strings.Builder
	b.WriteString("root\n")
	for _, f := range fields {
		fmt.Fprintf(&b, " |-- %s: %s (nullable = %t)\n", f.Name, f.Type, f.Nullable)
	}
	return b.String()
}
