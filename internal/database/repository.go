package database

import (
	"context"
	"time"

	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/google/uuid"
)

// UnitOfWork runs fn so that every repository write made with the ctx it
// receives is committed together or not at all.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id int64) (*entity.Room, error)
	GetAll(ctx context.Context) ([]*entity.Room, error)

	// Search returns rooms matching the filters with at least one open cell in the date range.
	Search(ctx context.Context, filter *entity.RoomSearch) ([]*entity.Room, error)
}

type AvailabilityRepository interface {
	// FetchWindow returns the records of [from, to] sorted by date. No rows is an empty slice.
	FetchWindow(ctx context.Context, roomID int64, from, to time.Time) ([]*entity.Availability, error)

	// UpdateCells overwrites the whole grid if the stored version still matches
	// rec.Version, and bumps rec.Version. A mismatch is entity.ErrConcurrentUpdate.
	UpdateCells(ctx context.Context, rec *entity.Availability) error

	// Provisioning
	CreateBatch(ctx context.Context, recs []*entity.Availability) (int64, error)
	LatestDate(ctx context.Context, roomID int64) (time.Time, bool, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	GetForUser(ctx context.Context, userID int64, id uuid.UUID) (*entity.Booking, error)
	ListByUser(ctx context.Context, userID int64, onlyCommented bool) ([]*entity.Booking, error)

	// MarkCancelled flips the flag only if it is not set yet.
	MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time) error

	// AddComment stores the one comment a booking may have.
	AddComment(ctx context.Context, comment *entity.Comment) error
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error

	// LockForUpdate serializes ledger changes of one user until the unit of work ends.
	LockForUpdate(ctx context.Context, id int64) error
}

// Store bundles the repositories of one storage backend.
type Store struct {
	Rooms          RoomRepository
	Availabilities AvailabilityRepository
	Bookings       BookingRepository
	Users          UserRepository
	Tx             UnitOfWork
}
