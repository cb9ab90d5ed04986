package entity

import (
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	UserID         int64      `json:"user_id" db:"user_id"`
	RoomID         int64      `json:"room_id" db:"room_id"`
	DateStart      time.Time  `json:"date_start" db:"date_start"`
	DateEnd        time.Time  `json:"date_end" db:"date_end"`
	SlotStart      int        `json:"slot_start" db:"slot_start"`
	SlotEnd        int        `json:"slot_end" db:"slot_end"`
	Duration       int        `json:"duration" db:"duration"`
	PartySize      int        `json:"party_size" db:"party_size"`
	ExclusiveCells []int      `json:"-" db:"exclusive_cells"`
	Cancelled      bool       `json:"cancelled" db:"cancelled"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	Comment        *Comment   `json:"comment,omitempty"`
}

// BookingRequest is what a user asks the planner for.
type BookingRequest struct {
	RoomID       int64  `json:"roomId" binding:"required,min=1"`
	StartingDate string `json:"startingDate" binding:"required"`
	StartingSlot int    `json:"startingHour" binding:"min=0,max=11"`
	Duration     int    `json:"duration" binding:"required,min=1"`
	PartySize    int    `json:"nbPeople" binding:"required,min=1"`
}

func (b *Booking) Span() Span {
	return NewSpan(b.DateStart, b.SlotStart, b.Duration)
}

// IsExclusive reports whether the booking closed the cell from the free state.
func (b *Booking) IsExclusive(c Cell) bool {
	idx := c.Index()
	for _, i := range b.ExclusiveCells {
		if i == idx {
			return true
		}
	}
	return false
}

// HasEnded reports whether the last slot is behind the given wall clock position.
func (b *Booking) HasEnded(today time.Time, currentSlot int) bool {
	end := DateOf(b.DateEnd)
	if end.Before(today) {
		return true
	}
	return end.Equal(today) && b.SlotEnd <= currentSlot
}

type BookingEventType string

const (
	BookingCreated   BookingEventType = "booking.created"
	BookingCancelled BookingEventType = "booking.cancelled"
	BookingCommented BookingEventType = "booking.commented"
)

// BookingEvent is published after a ledger change has been committed.
type BookingEvent struct {
	Type       BookingEventType `json:"type"`
	BookingID  uuid.UUID        `json:"booking_id"`
	UserID     int64            `json:"user_id"`
	RoomID     int64            `json:"room_id"`
	DateStart  string           `json:"date_start"`
	DateEnd    string           `json:"date_end"`
	PartySize  int              `json:"party_size"`
	OccurredAt time.Time        `json:"occurred_at"`
}

func NewBookingEvent(t BookingEventType, b *Booking, at time.Time) *BookingEvent {
	return &BookingEvent{
		Type:       t,
		BookingID:  b.ID,
		UserID:     b.UserID,
		RoomID:     b.RoomID,
		DateStart:  b.DateStart.Format(DateLayout),
		DateEnd:    b.DateEnd.Format(DateLayout),
		PartySize:  b.PartySize,
		OccurredAt: at,
	}
}
