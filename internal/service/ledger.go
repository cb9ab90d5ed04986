package service

import (
	"context"
	"strings"

	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/google/uuid"
)

type ledger struct {
	store    *database.Store
	runner   *txRunner
	clock    *BookingClock
	notifier *changeNotifier
}

func newLedger(store *database.Store, runner *txRunner, clock *BookingClock, notifier *changeNotifier) Ledger {
	return &ledger{
		store:    store,
		runner:   runner,
		clock:    clock,
		notifier: notifier,
	}
}

func (l *ledger) History(ctx context.Context, userID int64, onlyCommented bool) ([]*entity.Booking, error) {
	bookings, err := l.store.Bookings.ListByUser(ctx, userID, onlyCommented)
	if err != nil {
		return nil, entity.AsStorage(err)
	}
	return bookings, nil
}

func (l *ledger) Get(ctx context.Context, userID int64, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := l.store.Bookings.GetForUser(ctx, userID, bookingID)
	if err != nil {
		return nil, entity.AsStorage(err)
	}
	return booking, nil
}

// Comment attaches the single review a finished or cancelled booking may get
func (l *ledger) Comment(ctx context.Context, userID int64, bookingID uuid.UUID, req *entity.CommentRequest) (*entity.Comment, error) {
	if req.Rating < entity.MinRating || req.Rating > entity.MaxRating {
		return nil, entity.Validationf("rating must be between %d and %d", entity.MinRating, entity.MaxRating)
	}
	text := strings.TrimSpace(req.Comment)
	if text == "" {
		return nil, entity.Validationf("comment must not be empty")
	}

	var (
		comment *entity.Comment
		booking *entity.Booking
	)
	err := l.runner.run(ctx, func(ctx context.Context) error {
		if err := l.store.Users.LockForUpdate(ctx, userID); err != nil {
			return err
		}

		b, err := l.store.Bookings.GetForUser(ctx, userID, bookingID)
		if err != nil {
			return err
		}
		if b.Comment != nil {
			return entity.ErrAlreadyCommented
		}
		if !b.Cancelled && !b.HasEnded(l.clock.Today(), l.clock.CurrentSlot()) {
			return entity.ErrBookingNotFinished
		}

		c := &entity.Comment{
			BookingID: b.ID,
			Rating:    req.Rating,
			Text:      text,
			Anomalous: entity.IsAnomalousComment(text),
			CreatedAt: l.clock.Now(),
		}
		if err := l.store.Bookings.AddComment(ctx, c); err != nil {
			return err
		}
		comment, booking = c, b
		return nil
	})
	if err != nil {
		return nil, entity.AsStorage(err)
	}

	l.notifier.bookingChanged(ctx, entity.BookingCommented, booking, false)
	return comment, nil
}
