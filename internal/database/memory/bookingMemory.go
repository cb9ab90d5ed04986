package memory

import (
	"context"
	"time"

	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/google/uuid"
)

type bookingRepository struct {
	s *storage
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	stored := cloneBooking(booking, nil)
	stored.Comment = nil

	return r.s.write(ctx, op{
		check: func() error {
			if _, ok := r.s.users[stored.UserID]; !ok {
				return entity.ErrUserNotFound
			}
			return nil
		},
		apply: func() {
			r.s.bookings[stored.ID] = stored
			r.s.order = append(r.s.order, stored.ID)
		},
	})
}

func (r *bookingRepository) GetForUser(ctx context.Context, userID int64, id uuid.UUID) (*entity.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookings[id]
	if !ok || b.UserID != userID {
		return nil, entity.ErrBookingNotFound
	}
	return cloneBooking(b, r.s.comments[id]), nil
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID int64, onlyCommented bool) ([]*entity.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	bookings := make([]*entity.Booking, 0)
	for _, id := range r.s.order {
		b := r.s.bookings[id]
		if b.UserID != userID {
			continue
		}
		comment := r.s.comments[id]
		if onlyCommented && comment == nil {
			continue
		}
		bookings = append(bookings, cloneBooking(b, comment))
	}
	return bookings, nil
}

func (r *bookingRepository) MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.s.write(ctx, op{
		check: func() error {
			b, ok := r.s.bookings[id]
			if !ok {
				return entity.ErrBookingNotFound
			}
			if b.Cancelled {
				return entity.ErrAlreadyCancelled
			}
			return nil
		},
		apply: func() {
			b := r.s.bookings[id]
			b.Cancelled = true
			cancelledAt := at
			b.CancelledAt = &cancelledAt
		},
	})
}

func (r *bookingRepository) AddComment(ctx context.Context, comment *entity.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	stored := *comment

	return r.s.write(ctx, op{
		check: func() error {
			if _, ok := r.s.bookings[stored.BookingID]; !ok {
				return entity.ErrBookingNotFound
			}
			if _, ok := r.s.comments[stored.BookingID]; ok {
				return entity.ErrAlreadyCommented
			}
			return nil
		},
		apply: func() {
			r.s.comments[stored.BookingID] = &stored
		},
	})
}
