package service

import (
	"context"

	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/sirupsen/logrus"
)

type planner struct {
	store    *database.Store
	runner   *txRunner
	clock    *BookingClock
	notifier *changeNotifier
}

func newPlanner(store *database.Store, runner *txRunner, clock *BookingClock, notifier *changeNotifier) Planner {
	return &planner{
		store:    store,
		runner:   runner,
		clock:    clock,
		notifier: notifier,
	}
}

// Book reserves every cell of the requested span or nothing at all
func (p *planner) Book(ctx context.Context, userID int64, req *entity.BookingRequest) (*entity.Booking, error) {
	span, err := p.validate(req)
	if err != nil {
		return nil, err
	}

	room, err := p.store.Rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, entity.AsStorage(err)
	}

	var booking *entity.Booking
	err = p.runner.run(ctx, func(ctx context.Context) error {
		if err := p.store.Users.LockForUpdate(ctx, userID); err != nil {
			return err
		}

		records, err := p.store.Availabilities.FetchWindow(ctx, room.ID, span.StartDate, span.EndDate)
		if err != nil {
			return err
		}
		if err := checkWindow(span, records); err != nil {
			return err
		}
		if err := checkCapacity(span, records, req.PartySize, room); err != nil {
			return err
		}

		exclusive := make([]int, 0)
		for _, c := range span.Cells() {
			if records[c.Day].Claim(c.Slot, req.PartySize, room) {
				exclusive = append(exclusive, c.Index())
			}
		}
		for _, rec := range records {
			if err := p.store.Availabilities.UpdateCells(ctx, rec); err != nil {
				return err
			}
		}

		booking = &entity.Booking{
			UserID:         userID,
			RoomID:         room.ID,
			DateStart:      span.StartDate,
			DateEnd:        span.EndDate,
			SlotStart:      span.StartSlot,
			SlotEnd:        span.EndSlot,
			Duration:       span.Duration,
			PartySize:      req.PartySize,
			ExclusiveCells: exclusive,
			CreatedAt:      p.clock.Now(),
		}
		return p.store.Bookings.Create(ctx, booking)
	})
	if err != nil {
		return nil, entity.AsStorage(err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"room_id":    room.ID,
		"booking_id": booking.ID,
	}).Info("Booking created")

	p.notifier.bookingChanged(ctx, entity.BookingCreated, booking, true)
	return booking, nil
}

func (p *planner) validate(req *entity.BookingRequest) (entity.Span, error) {
	if req.RoomID <= 0 {
		return entity.Span{}, entity.Validationf("room id must be positive")
	}
	if req.StartingSlot < 0 || req.StartingSlot >= entity.SlotsPerDay {
		return entity.Span{}, entity.Validationf("starting hour must be between 0 and %d", entity.SlotsPerDay-1)
	}
	if req.Duration < 1 {
		return entity.Span{}, entity.Validationf("duration must be at least one hour")
	}
	if req.PartySize < 1 {
		return entity.Span{}, entity.Validationf("number of people must be at least one")
	}

	date, err := entity.ParseDate(req.StartingDate)
	if err != nil {
		return entity.Span{}, entity.Validationf("starting date must be formatted as %s", entity.DateLayout)
	}
	today := p.clock.Today()
	if date.Before(today) {
		return entity.Span{}, entity.Validationf("starting date %s is in the past", req.StartingDate)
	}
	if date.Equal(today) && req.StartingSlot < p.clock.CurrentSlot() {
		return entity.Span{}, entity.Validationf("starting hour %d of %s has already passed", req.StartingSlot, req.StartingDate)
	}

	return entity.NewSpan(date, req.StartingSlot, req.Duration), nil
}

// checkWindow requires one record for every day of the span, without gaps
func checkWindow(span entity.Span, records []*entity.Availability) error {
	if len(records) == 0 {
		return entity.ErrPeriodHasNoAvailability
	}
	if len(records) < span.Days {
		return entity.ErrPeriodTooLong
	}
	for i, rec := range records {
		if !rec.Date.Equal(span.DateAt(i)) {
			return entity.ErrPeriodTooLong
		}
	}
	return nil
}

// checkCapacity stops at the first cell that cannot seat the party
func checkCapacity(span entity.Span, records []*entity.Availability, party int, room *entity.Room) error {
	for _, c := range span.Cells() {
		rec := records[c.Day]
		if !rec.CanSeat(c.Slot, party, room) {
			return entity.CapacityAt(rec.Date.Format(entity.DateLayout), c.Slot)
		}
	}
	return nil
}
