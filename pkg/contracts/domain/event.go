package domain

import (
	"time"
)

// Column names of the raw input, in file order. The input carries no header
// row; these names are imposed on every record.
const (
	ColumnDate      = "date"
	ColumnTime      = "time"
	ColumnUserID    = "user_id"
	ColumnURL       = "url"
	ColumnIP        = "ip"
	ColumnUserAgent = "user_agent_string"
)

// RawColumns lists the raw column names in their fixed order.
var RawColumns = []string{ColumnDate, ColumnTime, ColumnUserID, ColumnURL, ColumnIP, ColumnUserAgent}

// RawEvent is one record of the tab-separated event log exactly as read.
// IP holds the comma-joined "primary,secondary" address pair.
type RawEvent struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	UserID    string `json:"user_id"`
	URL       string `json:"url"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent_string"`
}

// RawEventFromFields maps positional fields onto a RawEvent. Missing trailing
// fields stay empty and extra fields are ignored.
func RawEventFromFields(fields []string) RawEvent {
	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	return RawEvent{
		Date:      get(0),
		Time:      get(1),
		UserID:    get(2),
		URL:       get(3),
		IP:        get(4),
		UserAgent: get(5),
	}
}

// EnrichedEvent is the final, filtered row produced by the transform stage.
// Timestamp and City are nullable; Country is never nil in transform output
// because rows without a resolved country are dropped.
type EnrichedEvent struct {
	EventID   int64      `json:"eventID"`
	Timestamp *time.Time `json:"timestamp"`
	UserID    string     `json:"user_id"`
	URL       string     `json:"url"`
	OS        string     `json:"os"`
	Browser   string     `json:"browser"`
	Country   *string    `json:"country"`
	City      *string    `json:"city"`
}

// CountryOrEmpty returns the country label, or "" when unresolved.
func (e EnrichedEvent) CountryOrEmpty() string {
	if e.Country == nil {
		return ""
	}
	return *e.Country
}

// CityOrEmpty returns the city label, or "" when unresolved.
func (e EnrichedEvent) CityOrEmpty() string {
	if e.City == nil {
		return ""
	}
	return *e.City
}

// Field describes one column of the enriched table.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// Schema returns the ordered projection of the enriched table.
func Schema() []Field {
	return []Field{
		{Name: "eventID", Type: "long", Nullable: false},
		{Name: "timestamp", Type: "timestamp", Nullable: true},
		{Name: "user_id", Type: "string", Nullable: false},
		{Name: "url", Type: "string", Nullable: false},
		{Name: "os", Type: "string", Nullable: false},
		{Name: "browser", Type: "string", Nullable: false},
		{Name: "country", Type: "string", Nullable: false},
		{Name: "city", Type: "string", Nullable: true},
	}
}

// StringPtr returns a pointer to s. Convenience for building nullable columns.
func StringPtr(s string) *string {
	return &s
}
