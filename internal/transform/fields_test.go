package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventetl/pkg/contracts/domain"
)

func TestSplitInto(t *testing.T) {
	tests := []struct {
		name       string
		value      *string
		sep        string
		wantFirst  *string
		wantSecond *string
	}{
		{name: "nil", value: nil, sep: ",", wantFirst: nil, wantSecond: nil},
		{name: "pair", value: domain.StringPtr("1.2.3.4,5.6.7.8"), sep: ",", wantFirst: domain.StringPtr("1.2.3.4"), wantSecond: domain.StringPtr("5.6.7.8")},
		{name: "no separator", value: domain.StringPtr("1.2.3.4"), sep: ",", wantFirst: domain.StringPtr("1.2.3.4"), wantSecond: nil},
		{name: "extra tokens dropped", value: domain.StringPtr("a-b-c"), sep: "-", wantFirst: domain.StringPtr("a"), wantSecond: domain.StringPtr("b")},
		{name: "empty second", value: domain.StringPtr("a-"), sep: "-", wantFirst: domain.StringPtr("a"), wantSecond: domain.StringPtr("")},
		{name: "empty string", value: domain.StringPtr(""), sep: "-", wantFirst: domain.StringPtr(""), wantSecond: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, second := SplitInto(tt.value, tt.sep)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantSecond, second)
		})
	}
}

func TestSplitInto_RoundTrip(t *testing.T) {
	for _, pair := range [][2]string{{"Germany", "Berlin"}, {"Unknown OS", "Unknown Browser"}, {"x", ""}} {
		joined := pair[0] + "-" + pair[1]
		first, second := SplitInto(&joined, "-")
		require.NotNil(t, first)
		require.NotNil(t, second)
		assert.Equal(t, pair[0], *first)
		assert.Equal(t, pair[1], *second)
	}
}

func TestFuseTimestamp(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	tests := []struct {
		name  string
		date  string
		clock string
		loc   *time.Location
		want  *time.Time
	}{
		{
			name: "date and time", date: "2014-10-12", clock: "17:01:01",
			want: ptr(time.Date(2014, 10, 12, 17, 1, 1, 0, time.UTC)),
		},
		{
			name: "fractional seconds", date: "2014-10-12", clock: "17:01:01.250",
			want: ptr(time.Date(2014, 10, 12, 17, 1, 1, 250_000_000, time.UTC)),
		},
		{
			name: "minutes only", date: "2014-10-12", clock: "17:01",
			want: ptr(time.Date(2014, 10, 12, 17, 1, 0, 0, time.UTC)),
		},
		{
			name: "date only", date: "2014-10-12", clock: "",
			want: ptr(time.Date(2014, 10, 12, 0, 0, 0, 0, time.UTC)),
		},
		{
			name: "iso form in date column", date: "2014-10-12T17:01:01", clock: "",
			want: ptr(time.Date(2014, 10, 12, 17, 1, 1, 0, time.UTC)),
		},
		{
			name: "configured zone", date: "2014-10-12", clock: "17:01:01", loc: berlin,
			want: ptr(time.Date(2014, 10, 12, 17, 1, 1, 0, berlin)),
		},
		{name: "garbage", date: "yesterday", clock: "noon", want: nil},
		{name: "time only", date: "", clock: "17:01:01", want: nil},
		{name: "both empty", date: "", clock: "", want: nil},
		{name: "invalid month", date: "2014-13-12", clock: "17:01:01", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FuseTimestamp(tt.date, tt.clock, tt.loc)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %v, got %v", tt.want, got)
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
