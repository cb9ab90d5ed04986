package entity

import "time"

const (
	// CellFree marks a slot nobody has touched yet.
	CellFree = -1
	// CellClosed marks a slot without remaining capacity.
	CellClosed = 0
)

// WindowDays is how far ahead availability is provisioned, starting tomorrow.
const WindowDays = 91

type Availability struct {
	ID        int64            `json:"id" db:"id"`
	RoomID    int64            `json:"room_id" db:"room_id"`
	Date      time.Time        `json:"date" db:"date"`
	Hours     [SlotsPerDay]int `json:"hours" db:"hours"`
	Version   int64            `json:"version" db:"version"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}

func NewAvailability(room *Room, date time.Time) *Availability {
	a := &Availability{RoomID: room.ID, Date: DateOf(date)}
	for i := range a.Hours {
		a.Hours[i] = room.InitialCell()
	}
	return a
}

// CanSeat reports whether a party fits into the slot. A free public cell still
// holds at most room.Size people.
func (a *Availability) CanSeat(slot, party int, room *Room) bool {
	cell := a.Hours[slot]
	if cell == CellFree {
		return room.IsPrivate() || room.Size <= 0 || party <= room.Size
	}
	return cell >= party
}

// Claim consumes the slot for a party. It returns true when the slot went from
// free straight to closed, which is what a cancellation has to undo.
func (a *Availability) Claim(slot, party int, room *Room) bool {
	if a.Hours[slot] == CellFree || room.IsPrivate() {
		a.Hours[slot] = CellClosed
		return true
	}
	a.Hours[slot] -= party
	return false
}

// Release gives the slot back. Increments never go above the room size.
func (a *Availability) Release(slot, party int, room *Room, exclusive bool) {
	if room.IsPrivate() || exclusive {
		a.Hours[slot] = CellFree
		return
	}
	cell := a.Hours[slot] + party
	if room.Size > 0 && cell > room.Size {
		cell = room.Size
	}
	a.Hours[slot] = cell
}

// HasOpenCell reports whether any slot of the day can still take somebody.
func (a *Availability) HasOpenCell() bool {
	for _, cell := range a.Hours {
		if cell != CellClosed {
			return true
		}
	}
	return false
}

func (a *Availability) HoursSlice() []int64 {
	hours := make([]int64, SlotsPerDay)
	for i, cell := range a.Hours {
		hours[i] = int64(cell)
	}
	return hours
}

func (a *Availability) SetHours(hours []int64) error {
	if len(hours) != SlotsPerDay {
		return NewError(KindStorage, "invalid_grid", "availability grid must have 12 slots")
	}
	for i, cell := range hours {
		a.Hours[i] = int(cell)
	}
	return nil
}

func (a *Availability) Clone() *Availability {
	c := *a
	return &c
}
