package service

import (
	"time"

	"github.com/AirTechNEO/coworkconnect/internal/entity"
)

// BookingClock places the wall clock on the slot grid.
type BookingClock struct {
	now        func() time.Time
	location   *time.Location
	slotOffset int
}

// NewBookingClock builds a clock whose slot 0 starts at slotOffset o'clock in loc.
func NewBookingClock(now func() time.Time, loc *time.Location, slotOffset int) *BookingClock {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BookingClock{now: now, location: loc, slotOffset: slotOffset}
}

func (c *BookingClock) Now() time.Time {
	return c.now()
}

// Today is the current calendar date in the booking time zone.
func (c *BookingClock) Today() time.Time {
	return entity.DateOf(c.now().In(c.location))
}

// Tomorrow is the first day that can be provisioned and searched.
func (c *BookingClock) Tomorrow() time.Time {
	return c.Today().AddDate(0, 0, 1)
}

// CurrentSlot may fall outside 0..11 before opening and after closing.
func (c *BookingClock) CurrentSlot() int {
	return c.now().In(c.location).Hour() - c.slotOffset
}
