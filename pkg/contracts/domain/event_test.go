package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawEventFromFields(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   RawEvent
	}{
		{
			name:   "all six fields",
			fields: []string{"2021-01-01", "10:00:00", "u1", "http://x.test", "8.8.8.8,1.1.1.1", "Mozilla/5.0"},
			want: RawEvent{
				Date: "2021-01-01", Time: "10:00:00", UserID: "u1",
				URL: "http://x.test", IP: "8.8.8.8,1.1.1.1", UserAgent: "Mozilla/5.0",
			},
		},
		{
			name:   "short row pads with empty strings",
			fields: []string{"2021-01-01", "10:00:00", "u1"},
			want:   RawEvent{Date: "2021-01-01", Time: "10:00:00", UserID: "u1"},
		},
		{
			name:   "extra fields ignored",
			fields: []string{"d", "t", "u", "url", "ip", "ua", "extra"},
			want:   RawEvent{Date: "d", Time: "t", UserID: "u", URL: "url", IP: "ip", UserAgent: "ua"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RawEventFromFields(tt.fields))
		})
	}
}

func TestEnrichedEvent_JSONNulls(t *testing.T) {
	ts := time.Date(2021, 1, 1, 10, 0, 0, 0, time.UTC)
	ev := EnrichedEvent{
		EventID:   7,
		Timestamp: &ts,
		UserID:    "u1",
		OS:        "Windows",
		Browser:   "Firefox",
		Country:   StringPtr("US"),
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "US", decoded["country"])
	assert.Nil(t, decoded["city"])
	assert.Equal(t, float64(7), decoded["eventID"])
	assert.Equal(t, "", ev.CityOrEmpty())
	assert.Equal(t, "US", ev.CountryOrEmpty())
}

func TestSchema(t *testing.T) {
	schema := Schema()
	require.Len(t, schema, 8)

	names := make([]string, len(schema))
	for i, f := range schema {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"eventID", "timestamp", "user_id", "url", "os", "browser", "country", "city"}, names)
	assert.False(t, schema[6].Nullable, "country is filtered to non-null")
	assert.True(t, schema[7].Nullable)
}
