package entity

import "time"

// SlotsPerDay is the width of the operating day grid; slot 0 is the first opening hour.
const SlotsPerDay = 12

const DateLayout = "2006-01-02"

// DateOf drops the clock part of t, keeping the calendar date as seen in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Cell addresses one hour slot relative to the first day of a span.
type Cell struct {
	Day  int
	Slot int
}

// Index flattens the cell so it can be stored in an integer array.
func (c Cell) Index() int {
	return c.Day*SlotsPerDay + c.Slot
}

func CellAt(index int) Cell {
	return Cell{Day: index / SlotsPerDay, Slot: index % SlotsPerDay}
}

// Span is the set of cells covered by a booking that may wrap over several days.
type Span struct {
	StartDate time.Time
	StartSlot int
	Duration  int
	Days      int
	EndDate   time.Time
	EndSlot   int
}

func NewSpan(startDate time.Time, startSlot, duration int) Span {
	days := (startSlot + duration + SlotsPerDay - 1) / SlotsPerDay
	start := DateOf(startDate)
	return Span{
		StartDate: start,
		StartSlot: startSlot,
		Duration:  duration,
		Days:      days,
		EndDate:   start.AddDate(0, 0, days-1),
		EndSlot:   (startSlot + duration - 1) % SlotsPerDay,
	}
}

// DayRange returns the inclusive slot range touched on the given day of the span.
func (s Span) DayRange(day int) (from, to int) {
	from, to = 0, SlotsPerDay-1
	if day == 0 {
		from = s.StartSlot
	}
	if day == s.Days-1 {
		to = s.EndSlot
	}
	return from, to
}

func (s Span) DateAt(day int) time.Time {
	return s.StartDate.AddDate(0, 0, day)
}

// DayOf returns the offset of date inside the span, or -1 when it falls outside.
func (s Span) DayOf(date time.Time) int {
	day := int(DateOf(date).Sub(s.StartDate).Hours() / 24)
	if day < 0 || day >= s.Days {
		return -1
	}
	return day
}

// Cells lists every touched cell in chronological order.
func (s Span) Cells() []Cell {
	cells := make([]Cell, 0, s.Duration)
	for day := 0; day < s.Days; day++ {
		from, to := s.DayRange(day)
		for slot := from; slot <= to; slot++ {
			cells = append(cells, Cell{Day: day, Slot: slot})
		}
	}
	return cells
}
