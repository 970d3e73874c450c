package integrations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T09:00:00Z", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
		{"2024-01-01T09:00:00-08:00", time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC)},
		{"2024-01-01T09:00:00", time.Date(2024, 1, 1, 9, 0, 0, 0, la)},
		{"2024-01-01T09:00:00.000", time.Date(2024, 1, 1, 9, 0, 0, 0, la)},
		{"2024-01-01 18:30", time.Date(2024, 1, 1, 18, 30, 0, 0, la)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in, la)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %v want %v", tt.in, got, tt.want)
	}

	_, err = ParseTimestamp("", la)
	assert.Error(t, err)
	_, err = ParseTimestamp("tomorrow", la)
	assert.Error(t, err)
}

func TestReconcileTiming(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	at := func(h, m int) *time.Time {
		v := time.Date(2024, 1, 1, h, m, 0, 0, time.UTC)
		return &v
	}

	tests := []struct {
		name     string
		end      *time.Time
		duration int
		wantEnd  time.Time
		wantDur  int
	}{
		{"duration only", nil, 50, *at(9, 50), 50},
		{"end recomputes duration", at(10, 0), 45, *at(10, 0), 60},
		{"end before start ignored", at(8, 0), 30, *at(9, 30), 30},
		{"fallback", nil, 0, *at(9, 55), 55},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end, d := ReconcileTiming(start, tt.end, tt.duration, 55)
			assert.Equal(t, tt.wantEnd, end)
			assert.Equal(t, tt.wantDur, d)
			assert.Equal(t, time.Duration(d)*time.Minute, end.Sub(start))
		})
	}
}

func TestParseClock(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	hm := func(h, m int) time.Time { return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC) }

	tests := []struct {
		in      string
		start   time.Time
		end     *time.Time
		wantEnd bool
	}{
		{in: "9:00 AM", start: hm(9, 0)},
		{in: "6:30pm", start: hm(18, 30)},
		{in: "12:15 PM", start: hm(12, 15)},
		{in: "12:00 AM", start: hm(0, 0)},
		{in: "18:45", start: hm(18, 45)},
		{in: "9:00 - 9:50 AM", start: hm(9, 0), wantEnd: true, end: ptr(hm(9, 50))},
		{in: "11:30 - 12:20 PM", start: hm(11, 30), wantEnd: true, end: ptr(hm(12, 20))},
		{in: "5:30 PM – 6:15 PM", start: hm(17, 30), wantEnd: true, end: ptr(hm(18, 15))},
	}
	for _, tt := range tests {
		start, end, ok := ParseClock(tt.in, day)
		require.True(t, ok, tt.in)
		assert.Equal(t, tt.start, start, tt.in)
		if tt.wantEnd {
			require.NotNil(t, end, tt.in)
			assert.Equal(t, *tt.end, *end, tt.in)
		} else {
			assert.Nil(t, end, tt.in)
		}
	}

	_, _, ok := ParseClock("Reformer Flow", day)
	assert.False(t, ok)
}

func TestScheduleWindow(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// 03:00 UTC on the 2nd is still the 1st in Los Angeles.
	days := ScheduleWindow(time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC), la, 7)

	require.Len(t, days, 7)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, la), days[0])
	assert.Equal(t, time.Date(2026, 3, 7, 0, 0, 0, 0, la), days[6])
	assert.Len(t, ScheduleWindow(time.Now(), nil, 0), 1)
}

func ptr[T any](v T) *T { return &v }
