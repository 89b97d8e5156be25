package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		input   string
		minutes int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"23:59", 1439, false},
		{"24:00", 1440, false},
		{"9:30", 570, false},
		{"", 0, true},
		{"09", 0, true},
		{"09:00:00", 0, true},
		{"ab:cd", 0, true},
		{"25:00", 0, true},
		{"12:60", 0, true},
		{"-1:00", 0, true},
		{"24:01", 0, true},
		{"9:5", 0, true},
		{"09:5", 0, true},
		{"09:+5", 0, true},
		{"09:005", 0, true},
	}
	for _, tc := range cases {
		minutes, err := ParseClock(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.input)
			continue
		}
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.minutes, minutes, "input %q", tc.input)
	}
}

func TestNewIntervalRejectsInvertedAndEmptyRanges(t *testing.T) {
	_, err := NewInterval("10:00", "09:00")
	assert.Error(t, err)

	_, err = NewInterval("09:00", "09:00")
	assert.Error(t, err)

	interval, err := NewInterval("09:00", "10:30")
	require.NoError(t, err)
	assert.Equal(t, 540, interval.StartMinute)
	assert.Equal(t, 630, interval.EndMinute)
}

func TestOverlapsIsSymmetricAndHalfOpen(t *testing.T) {
	mk := func(start, end string) TimeInterval {
		interval, err := NewInterval(start, end)
		require.NoError(t, err)
		return interval
	}

	cases := []struct {
		a, b    TimeInterval
		overlap bool
	}{
		{mk("09:00", "10:00"), mk("09:30", "10:30"), true},
		{mk("09:00", "10:00"), mk("09:00", "10:00"), true},
		{mk("09:00", "12:00"), mk("10:00", "11:00"), true},
		{mk("09:00", "10:00"), mk("10:00", "11:00"), false},
		{mk("09:00", "10:00"), mk("11:00", "12:00"), false},
		{mk("09:00", "10:00"), mk("08:00", "09:00"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.overlap, tc.a.Overlaps(tc.b), "%s vs %s", tc.a, tc.b)
		assert.Equal(t, tc.a.Overlaps(tc.b), tc.b.Overlaps(tc.a), "symmetry %s vs %s", tc.a, tc.b)
	}
}

func TestDurationHours(t *testing.T) {
	interval, err := NewInterval("09:00", "10:30")
	require.NoError(t, err)
	assert.Equal(t, 1.5, interval.DurationHours())

	interval, err = NewInterval("08:00", "08:45")
	require.NoError(t, err)
	assert.Equal(t, 0.75, interval.DurationHours())
}

func TestIntervalFormatRoundTrip(t *testing.T) {
	for _, pair := range [][2]string{
		{"00:00", "00:01"},
		{"09:00", "10:30"},
		{"13:15", "14:45"},
		{"23:00", "24:00"},
	} {
		interval, err := NewInterval(pair[0], pair[1])
		require.NoError(t, err)

		again, err := NewInterval(interval.StartClock(), interval.EndClock())
		require.NoError(t, err)
		assert.Equal(t, interval, again)
	}
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("monday")
	require.NoError(t, err)
	assert.Equal(t, Monday, day)

	day, err = ParseDay(" Friday ")
	require.NoError(t, err)
	assert.Equal(t, Friday, day)

	_, err = ParseDay("Funday")
	assert.Error(t, err)
}
