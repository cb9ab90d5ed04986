package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

// TestNewSpan проверяет расчет дней и последнего слота
func TestNewSpan(t *testing.T) {
	tests := []struct {
		name      string
		startSlot int
		duration  int
		days      int
		endSlot   int
		endDate   string
	}{
		{name: "single slot", startSlot: 3, duration: 1, days: 1, endSlot: 3, endDate: "2025-03-10"},
		{name: "whole day", startSlot: 0, duration: 12, days: 1, endSlot: 11, endDate: "2025-03-10"},
		{name: "ends on last slot", startSlot: 5, duration: 7, days: 1, endSlot: 11, endDate: "2025-03-10"},
		{name: "crosses midnight", startSlot: 11, duration: 2, days: 2, endSlot: 0, endDate: "2025-03-11"},
		{name: "two full days", startSlot: 0, duration: 24, days: 2, endSlot: 11, endDate: "2025-03-11"},
		{name: "three days", startSlot: 10, duration: 16, days: 3, endSlot: 1, endDate: "2025-03-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span := NewSpan(mustDate(t, "2025-03-10"), tt.startSlot, tt.duration)

			assert.Equal(t, tt.days, span.Days)
			assert.Equal(t, tt.endSlot, span.EndSlot)
			assert.Equal(t, tt.endDate, span.EndDate.Format(DateLayout))
			assert.Len(t, span.Cells(), tt.duration)
		})
	}
}

func TestSpanCellsCrossingMidnight(t *testing.T) {
	span := NewSpan(mustDate(t, "2025-03-10"), 11, 2)

	cells := span.Cells()
	require.Len(t, cells, 2)
	assert.Equal(t, Cell{Day: 0, Slot: 11}, cells[0])
	assert.Equal(t, Cell{Day: 1, Slot: 0}, cells[1])
	assert.Equal(t, "2025-03-11", span.DateAt(1).Format(DateLayout))
}

func TestSpanDayRange(t *testing.T) {
	span := NewSpan(mustDate(t, "2025-03-10"), 10, 16)

	from, to := span.DayRange(0)
	assert.Equal(t, 10, from)
	assert.Equal(t, 11, to)

	from, to = span.DayRange(1)
	assert.Equal(t, 0, from)
	assert.Equal(t, 11, to)

	from, to = span.DayRange(2)
	assert.Equal(t, 0, from)
	assert.Equal(t, 1, to)
}

func TestSpanDayOf(t *testing.T) {
	span := NewSpan(mustDate(t, "2025-03-10"), 11, 2)

	assert.Equal(t, 0, span.DayOf(mustDate(t, "2025-03-10")))
	assert.Equal(t, 1, span.DayOf(mustDate(t, "2025-03-11")))
	assert.Equal(t, -1, span.DayOf(mustDate(t, "2025-03-12")))
	assert.Equal(t, -1, span.DayOf(mustDate(t, "2025-03-09")))
}

func TestCellIndexRoundTrip(t *testing.T) {
	for _, c := range []Cell{{0, 0}, {0, 11}, {1, 0}, {4, 7}} {
		assert.Equal(t, c, CellAt(c.Index()))
	}
}

func TestDateOfKeepsLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	ts := time.Date(2025, 3, 10, 1, 30, 0, 0, loc)

	assert.Equal(t, "2025-03-10", DateOf(ts).Format(DateLayout))
	assert.Equal(t, time.UTC, DateOf(ts).Location())
}
