package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/database/memory"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/AirTechNEO/coworkconnect/pkg/auth"
	"github.com/AirTechNEO/coworkconnect/pkg/retry"
	"github.com/stretchr/testify/require"
)

// fakeCache хранит результаты поиска в памяти и считает инвалидации
type fakeCache struct {
	mu            sync.Mutex
	entries       map[string][]*entity.Room
	gets, hits    int
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]*entity.Room)}
}

func cacheKey(f *entity.RoomSearch) string {
	return fmt.Sprint(f.DateFrom, f.DateTo, f.RoomSize, f.Amenities, f.Tags)
}

func (c *fakeCache) Get(ctx context.Context, filter *entity.RoomSearch) ([]*entity.Room, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	rooms, ok := c.entries[cacheKey(filter)]
	if ok {
		c.hits++
	}
	return rooms, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, filter *entity.RoomSearch, rooms []*entity.Room) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(filter)] = rooms
	return nil
}

func (c *fakeCache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	c.entries = make(map[string][]*entity.Room)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*entity.BookingEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event *entity.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []entity.BookingEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]entity.BookingEventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  *database.Store
	svc    *Services
	cache  *fakeCache
	events *recordingPublisher

	mu  sync.Mutex
	now time.Time
}

// start is 2025-03-09 10:00 UTC: today is the 9th and slot 2 is running.
var start = time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	return newFixtureWithStore(t, memory.NewStore())
}

func newFixtureWithStore(t *testing.T, store *database.Store) *fixture {
	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		store:  store,
		cache:  newFakeCache(),
		events: &recordingPublisher{},
		now:    start,
	}

	clock := NewBookingClock(f.clock, time.UTC, 8)
	f.svc = NewServices(Deps{
		Store:      store,
		Retry:      retry.NewRetryManager(50, time.Microsecond, IsRetryable),
		Clock:      clock,
		Cache:      f.cache,
		Events:     f.events,
		Tokens:     auth.NewTokenManager("test-secret", 24*time.Hour),
		PageSize:   20,
		WindowDays: entity.WindowDays,
	})
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) setNow(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

func (f *fixture) user(email string) int64 {
	f.t.Helper()
	u := &entity.User{Email: email}
	require.NoError(f.t, f.store.Users.Create(f.ctx, u))
	return u.ID
}

// room creates a room and provisions the standard window for it
func (f *fixture) room(kind entity.RoomKind, size int) *entity.Room {
	f.t.Helper()
	room := &entity.Room{Kind: kind, Size: size}
	require.NoError(f.t, f.store.Rooms.Create(f.ctx, room))
	_, err := f.svc.Provisioner.ProvisionRoom(f.ctx, room)
	require.NoError(f.t, err)
	return room
}

// virginPublicRoom creates a public room whose cells are all -1 on the given days
func (f *fixture) virginPublicRoom(size int, dates ...string) *entity.Room {
	f.t.Helper()
	room := &entity.Room{Kind: entity.RoomKindPublic, Size: size}
	require.NoError(f.t, f.store.Rooms.Create(f.ctx, room))

	recs := make([]*entity.Availability, 0, len(dates))
	for _, d := range dates {
		rec := &entity.Availability{RoomID: room.ID, Date: f.date(d)}
		for i := range rec.Hours {
			rec.Hours[i] = entity.CellFree
		}
		recs = append(recs, rec)
	}
	_, err := f.store.Availabilities.CreateBatch(f.ctx, recs)
	require.NoError(f.t, err)
	return room
}

func (f *fixture) date(s string) time.Time {
	f.t.Helper()
	d, err := entity.ParseDate(s)
	require.NoError(f.t, err)
	return d
}

func (f *fixture) cells(roomID int64, date string) [entity.SlotsPerDay]int {
	f.t.Helper()
	recs, err := f.store.Availabilities.FetchWindow(f.ctx, roomID, f.date(date), f.date(date))
	require.NoError(f.t, err)
	require.Len(f.t, recs, 1)
	return recs[0].Hours
}

func (f *fixture) window(roomID int64, from, to string) []*entity.Availability {
	f.t.Helper()
	recs, err := f.store.Availabilities.FetchWindow(f.ctx, roomID, f.date(from), f.date(to))
	require.NoError(f.t, err)
	return recs
}

func (f *fixture) book(userID, roomID int64, date string, slot, duration, party int) (*entity.Booking, error) {
	return f.svc.Planner.Book(f.ctx, userID, &entity.BookingRequest{
		RoomID:       roomID,
		StartingDate: date,
		StartingSlot: slot,
		Duration:     duration,
		PartySize:    party,
	})
}
