// Package memory keeps every repository in process memory. It follows the same
// contracts as the postgres repositories, including version checked writes and
// the per-user lock, and backs the single-node mode and the service tests.
package memory

import (
	"sync"

	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/AirTechNEO/coworkconnect/pkg/locker"
	"github.com/google/uuid"
)

type storage struct {
	mu sync.RWMutex

	rooms      map[int64]*entity.Room
	nextRoomID int64

	availabilities map[int64]*entity.Availability
	byRoomDate     map[int64]map[string]int64
	nextAvailID    int64

	bookings map[uuid.UUID]*entity.Booking
	order    []uuid.UUID
	comments map[uuid.UUID]*entity.Comment

	users      map[int64]*entity.User
	emails     map[string]int64
	nextUserID int64

	userLocks *locker.KeyedMutex
}

func newStorage() *storage {
	return &storage{
		rooms:          make(map[int64]*entity.Room),
		availabilities: make(map[int64]*entity.Availability),
		byRoomDate:     make(map[int64]map[string]int64),
		bookings:       make(map[uuid.UUID]*entity.Booking),
		comments:       make(map[uuid.UUID]*entity.Comment),
		users:          make(map[int64]*entity.User),
		emails:         make(map[string]int64),
		userLocks:      locker.NewKeyedMutex(),
	}
}

func NewStore() *database.Store {
	s := newStorage()
	return &database.Store{
		Rooms:          &roomRepository{s: s},
		Availabilities: &availabilityRepository{s: s},
		Bookings:       &bookingRepository{s: s},
		Users:          &userRepository{s: s},
		Tx:             &txManager{s: s},
	}
}

func cloneRoom(r *entity.Room) *entity.Room {
	c := *r
	c.Amenities = append([]string(nil), r.Amenities...)
	c.Tags = append([]string(nil), r.Tags...)
	return &c
}

func cloneBooking(b *entity.Booking, comment *entity.Comment) *entity.Booking {
	c := *b
	c.ExclusiveCells = append([]int(nil), b.ExclusiveCells...)
	if b.CancelledAt != nil {
		at := *b.CancelledAt
		c.CancelledAt = &at
	}
	if comment != nil {
		cm := *comment
		c.Comment = &cm
	}
	return &c
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Preferences = append([]string(nil), u.Preferences...)
	return &c
}
