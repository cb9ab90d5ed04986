package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/database/memory"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanner_Book_UntouchedPublicRoom(t *testing.T) {
	f := newFixture(t)
	userID := f.user("ann@example.com")
	room := f.virginPublicRoom(10, "2025-03-10")

	booking, err := f.book(userID, room.ID, "2025-03-10", 0, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, booking.ExclusiveCells)

	cells := f.cells(room.ID, "2025-03-10")
	assert.Equal(t, entity.CellClosed, cells[0])
	assert.Equal(t, entity.CellClosed, cells[1])
	assert.Equal(t, entity.CellFree, cells[2])

	_, err = f.book(userID, room.ID, "2025-03-10", 0, 1, 6)
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrInsufficientCapacity))
	assert.Equal(t, entity.KindCapacity, entity.KindOf(err))
	assert.Contains(t, err.Error(), "day 2025-03-10 at hour slot 0")
}

func TestPlanner_Book_UntouchedPublicCellHoldsRoomSize(t *testing.T) {
	f := newFixture(t)
	userID := f.user("ann@example.com")
	room := f.virginPublicRoom(4, "2025-03-10")

	_, err := f.book(userID, room.ID, "2025-03-10", 0, 1, 40)
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrInsufficientCapacity))
	assert.Equal(t, entity.CellFree, f.cells(room.ID, "2025-03-10")[0])

	_, err = f.book(userID, room.ID, "2025-03-10", 0, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, entity.CellClosed, f.cells(room.ID, "2025-03-10")[0])
}

func TestPlanner_Book_SeatCounting(t *testing.T) {
	f := newFixture(t)
	userID := f.user("ann@example.com")
	room := f.room(entity.RoomKindPublic, 10)

	_, err := f.book(userID, room.ID, "2025-03-10", 4, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, f.cells(room.ID, "2025-03-10")[4])

	booking, err := f.book(userID, room.ID, "2025-03-10", 4, 1, 7)
	require.NoError(t, err)
	assert.Empty(t, booking.ExclusiveCells)
	assert.Equal(t, entity.CellClosed, f.cells(room.ID, "2025-03-10")[4])

	_, err = f.book(userID, room.ID, "2025-03-10", 4, 1, 1)
	assert.True(t, errors.Is(err, entity.ErrInsufficientCapacity))
	assert.Contains(t, err.Error(), "hour slot 4")
}

func TestPlanner_Book_PrivateRoomIgnoresPartySize(t *testing.T) {
	f := newFixture(t)
	userID := f.user("ann@example.com")
	room := f.room(entity.RoomKindPrivate, 4)

	booking, err := f.book(userID, room.ID, "2025-03-10", 3, 1, 40)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, booking.ExclusiveCells)
	assert.Equal(t, entity.CellClosed, f.cells(room.ID, "2025-03-10")[3])

	_, err = f.book(userID, room.ID, "2025-03-10", 3, 1, 1)
	assert.True(t, errors.Is(err, entity.ErrInsufficientCapacity))
}

func TestPlanner_Book_WrapsToNextDay(t *testing.T) {
	f := newFixture(t)
	userID := f.user("ann@example.com")
	room := f.room(entity.RoomKindPrivate, 2)

	booking, err := f.book(userID, room.ID, "2025-03-10", 11, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, f.date("2025-03-10"), booking.DateStart)
	assert.Equal(t, f.date("2025-03-11"), booking.DateEnd)
	assert.Equal(t, 11, booking.SlotStart)
	assert.Equal(t, 0, booking.SlotEnd)
	assert.Equal(t, []int{11, 12}, booking.ExclusiveCells)

	day1 := f.cells(room.ID, "2025-03-10")
	day2 := f.cells(room.ID, "2025-03-11")
	assert.Equal(t, entity.CellClosed, day1[11])
	assert.Equal(t, entity.CellFree, day1[10])
	assert.Equal(t, entity.CellClosed, day2[0])
	assert.Equal(t, entity.CellFree, day2[1])
}

func TestPlanner_Book_Window(t *testing.T) {
	f := newFixture(t)
	userID := f.user("ann@example.com")
	room := f.room(entity.RoomKindPublic, 10)

	// the window runs from 2025-03-10 to 2025-06-08
	tests := []struct {
		name     string
		date     string
		slot     int
		duration int
		wantErr  error
	}{
		{
			name:     "last provisioned day",
			date:     "2025-06-08",
			slot:     0,
			duration: 12,
		},
		{
			name:     "runs past the window",
			date:     "2025-06-08",
			slot:     11,
			duration: 2,
			wantErr:  entity.ErrPeriodTooLong,
		},
		{
			name:     "starts past the window",
			date:     "2025-06-09",
			slot:     0,
			duration: 1,
			wantErr:  entity.ErrPeriodHasNoAvailability,
		},
		{
			name:     "today is not provisioned",
			date:     "2025-03-09",
			slot:     8,
			duration: 1,
			wantErr:  entity.ErrPeriodHasNoAvailability,
		},
		{
			name:     "several days",
			date:     "2025-03-12",
			slot:     6,
			duration: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.book(userID, room.ID, tt.date, tt.slot, tt.duration, 1)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Equal(t, entity.KindCapacity, entity.KindOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPlanner_Book_Validation(t *testing.T) {
	f := newFixture(t)
	userID := f.user("ann@example.com")
	room := f.room(entity.RoomKindPublic, 10)

	tests := []struct {
		name string
		req  entity.BookingRequest
	}{
		{"missing room", entity.BookingRequest{RoomID: 0, StartingDate: "2025-03-10", Duration: 1, PartySize: 1}},
		{"slot below zero", entity.BookingRequest{RoomID: room.ID, StartingDate: "2025-03-10", StartingSlot: -1, Duration: 1, PartySize: 1}},
		{"slot past closing", entity.BookingRequest{RoomID: room.ID, StartingDate: "2025-03-10", StartingSlot: 12, Duration: 1, PartySize: 1}},
		{"zero duration", entity.BookingRequest{RoomID: room.ID, StartingDate: "2025-03-10", Duration: 0, PartySize: 1}},
		{"zero party", entity.BookingRequest{RoomID: room.ID, StartingDate: "2025-03-10", Duration: 1, PartySize: 0}},
		{"bad date", entity.BookingRequest{RoomID: room.ID, StartingDate: "10/03/2025", Duration: 1, PartySize: 1}},
		{"date in the past", entity.BookingRequest{RoomID: room.ID, StartingDate: "2025-03-08", Duration: 1, PartySize: 1}},
		{"hour already passed today", entity.BookingRequest{RoomID: room.ID, StartingDate: "2025-03-09", StartingSlot: 0, Duration: 1, PartySize: 1}},
		{"span starting before the running hour", entity.BookingRequest{RoomID: room.ID, StartingDate: "2025-03-09", StartingSlot: 1, Duration: 3, PartySize: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.Planner.Book(f.ctx, userID, &req)
			require.Error(t, err)
			assert.Equal(t, entity.KindValidation, entity.KindOf(err))
		})
	}

	assert.Empty(t, f.events.types())
}

func TestPlanner_Book_UnknownRoom(t *testing.T) {
	f := newFixture(t)
	userID := f.user("ann@example.com")

	_, err := f.book(userID, 999, "2025-03-10", 0, 1, 1)
	assert.True(t, errors.Is(err, entity.ErrRoomNotFound))
	assert.Equal(t, entity.KindNotFound, entity.KindOf(err))
}

func TestPlanner_Book_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	ann := f.user("ann@example.com")
	bob := f.user("bob@example.com")
	room := f.room(entity.RoomKindPrivate, 2)

	_, err := f.book(ann, room.ID, "2025-03-10", 5, 1, 1)
	require.NoError(t, err)
	before := f.window(room.ID, "2025-03-10", "2025-03-10")[0]

	_, err = f.book(bob, room.ID, "2025-03-10", 3, 4, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hour slot 5")

	after := f.window(room.ID, "2025-03-10", "2025-03-10")[0]
	assert.Equal(t, before.Hours, after.Hours)
	assert.Equal(t, before.Version, after.Version)

	history, err := f.svc.Ledger.History(f.ctx, bob, false)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPlanner_Book_NotifiesAfterCommit(t *testing.T) {
	f := newFixture(t)
	userID := f.user("ann@example.com")
	room := f.room(entity.RoomKindPublic, 10)

	booking, err := f.book(userID, room.ID, "2025-03-10", 0, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, []entity.BookingEventType{entity.BookingCreated}, f.events.types())
	assert.Equal(t, booking.ID, f.events.events[0].BookingID)
	assert.Equal(t, 1, f.cache.invalidations)
}

func TestPlanner_Book_ConcurrentPrivateSlot(t *testing.T) {
	f := newFixture(t)
	room := f.room(entity.RoomKindPrivate, 2)

	const workers = 10
	users := make([]int64, workers)
	for i := range users {
		users[i] = f.user(fmt.Sprintf("user%d@example.com", i))
	}

	var (
		wg        sync.WaitGroup
		succeeded int32
		rejected  int32
	)
	for _, userID := range users {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := f.book(userID, room.ID, "2025-03-10", 3, 1, 1)
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case errors.Is(err, entity.ErrInsufficientCapacity):
				atomic.AddInt32(&rejected, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(userID)
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded)
	assert.Equal(t, int32(workers-1), rejected)
	assert.Equal(t, entity.CellClosed, f.cells(room.ID, "2025-03-10")[3])
}

func TestPlanner_Book_ConcurrentPublicSlot(t *testing.T) {
	f := newFixture(t)
	room := f.room(entity.RoomKindPublic, 10)

	const (
		workers = 8
		party   = 3
	)
	users := make([]int64, workers)
	for i := range users {
		users[i] = f.user(fmt.Sprintf("user%d@example.com", i))
	}

	var (
		wg     sync.WaitGroup
		seated int32
	)
	for _, userID := range users {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := f.book(userID, room.ID, "2025-03-10", 7, 2, party)
			if err == nil {
				atomic.AddInt32(&seated, party)
				return
			}
			assert.True(t, errors.Is(err, entity.ErrInsufficientCapacity), "got %v", err)
		}(userID)
	}
	wg.Wait()

	assert.LessOrEqual(t, int(seated), room.Size)
	assert.Equal(t, int32(9), seated)

	cells := f.cells(room.ID, "2025-03-10")
	assert.Equal(t, room.Size-int(seated), cells[7])
	assert.Equal(t, room.Size-int(seated), cells[8])
}

func TestPlanner_Book_SameUserIsSerialized(t *testing.T) {
	f := newFixture(t)
	userID := f.user("ann@example.com")
	room := f.room(entity.RoomKindPublic, 10)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, err := f.book(userID, room.ID, "2025-03-10", slot, 1, 1)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, err := f.svc.Ledger.History(f.ctx, userID, false)
	require.NoError(t, err)
	assert.Len(t, history, 5)
}

// conflictingAvailabilities loses every version race
type conflictingAvailabilities struct {
	database.AvailabilityRepository
	attempts int32
}

func (c *conflictingAvailabilities) UpdateCells(ctx context.Context, rec *entity.Availability) error {
	atomic.AddInt32(&c.attempts, 1)
	return entity.ErrConcurrentUpdate
}

func TestPlanner_Book_RetriesExhausted(t *testing.T) {
	store := memory.NewStore()
	avail := &conflictingAvailabilities{AvailabilityRepository: store.Availabilities}
	racing := *store
	racing.Availabilities = avail

	f := newFixtureWithStore(t, &racing)
	userID := f.user("ann@example.com")
	room := f.room(entity.RoomKindPublic, 10)

	_, err := f.book(userID, room.ID, "2025-03-10", 0, 1, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrRetriesExhausted))
	assert.True(t, errors.Is(err, entity.ErrConcurrentUpdate))
	assert.Equal(t, entity.KindConsistency, entity.KindOf(err))

	// one first attempt plus fifty retries
	assert.Equal(t, int32(51), atomic.LoadInt32(&avail.attempts))

	history, err := f.svc.Ledger.History(f.ctx, userID, false)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, f.events.types())
}
