package transform

import (
	"strings"
	"time"
)

// timestampLayouts are tried in order when fusing date and time
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// SplitInto splits value on sep and returns the first two tokens.
// A nil value yields (nil, nil); a value without sep yields (value, nil).
// Tokens past the second are discarded.
func SplitInto(value *string, sep string) (first, second *string) {
	if value == nil {
		return nil, nil
	}
	parts := strings.Split(*value, sep)
	first = &parts[0]
	if len(parts) > 1 {
		second = &parts[1]
	}
	return first, second
}

// FuseTimestamp joins the non-empty date and time parts with one space and
// parses the result in loc. Anything unparseable yields nil.
func FuseTimestamp(date, clock string, loc *time.Location) *time.Time {
	var parts []string
	for _, p := range []string{date, clock} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	value := strings.Join(parts, " ")
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return &ts
		}
	}
	return nil
}

// nullable treats an empty field as a missing value
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
