package service

import (
	"context"

	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type reconciler struct {
	store    *database.Store
	runner   *txRunner
	clock    *BookingClock
	notifier *changeNotifier
}

func newReconciler(store *database.Store, runner *txRunner, clock *BookingClock, notifier *changeNotifier) Reconciler {
	return &reconciler{
		store:    store,
		runner:   runner,
		clock:    clock,
		notifier: notifier,
	}
}

// Cancel marks the booking cancelled and restores the cells that have not elapsed yet
func (r *reconciler) Cancel(ctx context.Context, userID int64, bookingID uuid.UUID) (*entity.Booking, error) {
	var cancelled *entity.Booking
	err := r.runner.run(ctx, func(ctx context.Context) error {
		if err := r.store.Users.LockForUpdate(ctx, userID); err != nil {
			return err
		}

		booking, err := r.store.Bookings.GetForUser(ctx, userID, bookingID)
		if err != nil {
			return err
		}
		if booking.Cancelled {
			return entity.ErrAlreadyCancelled
		}

		today, currentSlot := r.clock.Today(), r.clock.CurrentSlot()
		if booking.HasEnded(today, currentSlot) {
			return entity.ErrPastReservation
		}

		room, err := r.store.Rooms.GetByID(ctx, booking.RoomID)
		if err != nil {
			return err
		}

		span := booking.Span()
		from := span.StartDate
		if today.After(from) {
			from = today
		}
		records, err := r.store.Availabilities.FetchWindow(ctx, room.ID, from, span.EndDate)
		if err != nil {
			return err
		}

		byDate := make(map[string]*entity.Availability, len(records))
		for _, rec := range records {
			byDate[rec.Date.Format(entity.DateLayout)] = rec
		}

		touched := make(map[int64]bool, len(records))
		for _, c := range span.Cells() {
			date := span.DateAt(c.Day)
			if date.Before(today) || (date.Equal(today) && c.Slot < currentSlot) {
				continue
			}
			rec, ok := byDate[date.Format(entity.DateLayout)]
			if !ok {
				continue
			}
			rec.Release(c.Slot, booking.PartySize, room, booking.IsExclusive(c))
			touched[rec.ID] = true
		}

		for _, rec := range records {
			if !touched[rec.ID] {
				continue
			}
			if err := r.store.Availabilities.UpdateCells(ctx, rec); err != nil {
				return err
			}
		}

		now := r.clock.Now()
		if err := r.store.Bookings.MarkCancelled(ctx, booking.ID, now); err != nil {
			return err
		}
		booking.Cancelled = true
		booking.CancelledAt = &now
		cancelled = booking
		return nil
	})
	if err != nil {
		return nil, entity.AsStorage(err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"room_id":    cancelled.RoomID,
		"booking_id": cancelled.ID,
	}).Info("Booking cancelled")

	r.notifier.bookingChanged(ctx, entity.BookingCancelled, cancelled, true)
	return cancelled, nil
}
