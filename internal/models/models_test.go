package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(570), tod)
	assert.Equal(t, 9.5, tod.Hours())

	tod, err = ParseTimeOfDay("14:05:00")
	require.NoError(t, err)
	assert.Equal(t, "14:05", tod.String())

	for _, bad := range []string{"", "9", "24:00", "10:60", "10:5", "ab:cd"} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestTimeOfDayScan(t *testing.T) {
	var tod TimeOfDay
	require.NoError(t, tod.Scan(time.Date(0, 1, 1, 9, 15, 0, 0, time.UTC)))
	assert.Equal(t, "09:15", tod.String())
	require.NoError(t, tod.Scan([]byte("10:00:00")))
	assert.Equal(t, MustTimeOfDay("10:00"), tod)
	assert.Error(t, tod.Scan(nil))

	v, err := MustTimeOfDay("08:05").Value()
	require.NoError(t, err)
	assert.Equal(t, "08:05:00", v)
}

func TestOverlaps(t *testing.T) {
	nine, ten, half, eleven := MustTimeOfDay("09:00"), MustTimeOfDay("10:00"), MustTimeOfDay("09:30"), MustTimeOfDay("11:00")
	assert.True(t, Overlaps(nine, ten, half, eleven))
	assert.True(t, Overlaps(nine, ten, nine, ten))
	assert.False(t, Overlaps(nine, ten, ten, eleven), "touching ranges do not overlap")
}

func TestDayOfWeekParsing(t *testing.T) {
	cases := map[string]DayOfWeek{"monday": Monday, "SUN": Sunday, "3": Wednesday, "thu": Thursday}
	for in, want := range cases {
		got, err := ParseDayOfWeek(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDayOfWeek("8")
	assert.Error(t, err)
	_, err = ParseDayOfWeek("T")
	assert.Error(t, err)
}

func TestDayOfWeekJSON(t *testing.T) {
	var payload struct {
		A DayOfWeek `json:"a"`
		B DayOfWeek `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"TUESDAY","b":7}`), &payload))
	assert.Equal(t, Tuesday, payload.A)
	assert.Equal(t, Sunday, payload.B)

	out, err := json.Marshal(Friday)
	require.NoError(t, err)
	assert.Equal(t, `"FRIDAY"`, string(out))
}

func TestDayOfWeekConversions(t *testing.T) {
	sunday := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, Sunday, DayOf(sunday))
	assert.Equal(t, time.Sunday, Sunday.Weekday())
	assert.Equal(t, time.Monday, Monday.Weekday())
	assert.Equal(t, 1, Monday.Distance(Sunday))
	assert.Equal(t, 3, Monday.Distance(Thursday))
}

func TestHolidayCovers(t *testing.T) {
	h := Holiday{
		StartDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, h.Covers(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, h.Covers(time.Date(2025, 1, 16, 23, 0, 0, 0, time.UTC)))
	assert.False(t, h.Covers(time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)))
}

func TestSharesSemesterScope(t *testing.T) {
	s1, s2 := "s1", "s2"
	assert.True(t, SharesSemesterScope(nil, &s1))
	assert.True(t, SharesSemesterScope(&s1, &s1))
	assert.False(t, SharesSemesterScope(&s1, &s2))
}
