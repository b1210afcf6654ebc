package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_FormatInvariance(t *testing.T) {
	want := Date{Year: 2024, Month: time.January, Day: 5}
	for _, raw := range []string{
		"05/01/2024",
		"5/1/2024",
		"05-01-2024",
		"05.01.2024",
		"05/01/24",
		"2024-01-05",
		"2024-1-5",
		"  05/01/2024  ",
	} {
		got, ok := ParseDate(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestParseDate_Rejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"n/a",
		"January 5, 2024",
		"2024/01/05",
		"31/02/2024",
		"01/13/2024",
		"05/01/024",
		"00/01/2024",
	} {
		_, ok := ParseDate(raw)
		assert.False(t, ok, raw)
	}
}

func TestParseTime_Equivalences(t *testing.T) {
	pm, ok := ParseTime("2:30 PM")
	require.True(t, ok)
	h24, ok := ParseTime("14:30:00")
	require.True(t, ok)
	assert.Equal(t, h24, pm)

	midnight, ok := ParseTime("12:00 AM")
	require.True(t, ok)
	zero, ok := ParseTime("00:00:00")
	require.True(t, ok)
	assert.Equal(t, zero, midnight)

	noon, ok := ParseTime("12:00 pm")
	require.True(t, ok)
	assert.Equal(t, Clock{Hour: 12}, noon)
}

func TestParseTime_Forms(t *testing.T) {
	cases := map[string]Clock{
		"9:05":                  {Hour: 9, Minute: 5},
		"09:05:07":              {Hour: 9, Minute: 5, Second: 7},
		"11:59:59PM":            {Hour: 23, Minute: 59, Second: 59},
		"2024-01-05T10:04:05Z":  {Hour: 10, Minute: 4, Second: 5},
		"2024-01-05T23:00:00.0": {Hour: 23},
	}
	for raw, want := range cases {
		got, ok := ParseTime(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "  ", "n/a", "N/A", "noon", "25:00", "10:61"} {
		_, ok := ParseTime(raw)
		assert.False(t, ok, raw)
	}
}

func TestCombine(t *testing.T) {
	_, ok := Combine(nil, &Clock{Hour: 1})
	assert.False(t, ok)

	d := Date{Year: 2024, Month: time.March, Day: 1}
	ts, ok := Combine(&d, nil)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ts)

	ts, ok = Combine(&d, &Clock{Hour: 13, Minute: 2, Second: 3})
	require.True(t, ok)
	assert.Equal(t, time.UTC, ts.Location())
	assert.Equal(t, "2024-03-01T13:02:03.000Z", FormatISO(ts))
}

func TestParseDateTime_BadTimeFallsBackToMidnight(t *testing.T) {
	ts, ok := ParseDateTime("01/02/2024", "garbage")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), ts)

	_, ok = ParseDateTime("", "10:00")
	assert.False(t, ok)
}

func ptr(t time.Time) *time.Time { return &t }

func TestDayDiff(t *testing.T) {
	a := ptr(time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC))
	b := ptr(time.Date(2024, 1, 5, 0, 1, 0, 0, time.UTC))

	assert.Equal(t, 4, DayDiff(a, b))
	assert.Equal(t, 0, DayDiff(b, a), "negative spans clamp to zero")
	assert.Equal(t, 0, DayDiff(a, a))
	assert.Equal(t, 0, DayDiff(nil, b))
	assert.Equal(t, 0, DayDiff(a, nil))

	sameDay := ptr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 0, DayDiff(sameDay, a), "time of day is ignored")
}

func TestAbsDayDiff_Symmetric(t *testing.T) {
	a := ptr(time.Date(2024, 2, 27, 8, 0, 0, 0, time.UTC))
	b := ptr(time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC))

	assert.Equal(t, 4, AbsDayDiff(a, b))
	assert.Equal(t, AbsDayDiff(a, b), AbsDayDiff(b, a))
	assert.Equal(t, 0, AbsDayDiff(nil, b))
}

func TestToSQL(t *testing.T) {
	assert.Equal(t, "2025-10-30", ToSQLDate("30.10.2025"))
	assert.Equal(t, "2025-10-30", ToSQLDate("30/10/25"))
	assert.Equal(t, "", ToSQLDate("n/a"))

	assert.Equal(t, "14:05:00", ToSQLTime("2:05 PM"))
	assert.Equal(t, "07:08:09", ToSQLTime("7:08:09"))
	assert.Equal(t, "", ToSQLTime("N/A"))
}
