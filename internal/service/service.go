package service

import (
	"context"

	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/AirTechNEO/coworkconnect/pkg/auth"
	"github.com/AirTechNEO/coworkconnect/pkg/retry"
	"github.com/google/uuid"
)

// Planner decides whether a booking fits and commits it together with the capacity it consumes
type Planner interface {
	Book(ctx context.Context, userID int64, req *entity.BookingRequest) (*entity.Booking, error)
}

// Reconciler gives back the capacity of a cancelled booking
type Reconciler interface {
	Cancel(ctx context.Context, userID int64, bookingID uuid.UUID) (*entity.Booking, error)
}

// Ledger определяет операции с историей бронирований пользователя
type Ledger interface {
	History(ctx context.Context, userID int64, onlyCommented bool) ([]*entity.Booking, error)
	Get(ctx context.Context, userID int64, bookingID uuid.UUID) (*entity.Booking, error)
	Comment(ctx context.Context, userID int64, bookingID uuid.UUID, req *entity.CommentRequest) (*entity.Comment, error)
}

// RoomService определяет поиск и просмотр комнат
type RoomService interface {
	Search(ctx context.Context, query *SearchQuery) (*entity.RoomPage, error)
	GetRoom(ctx context.Context, id int64) (*entity.Room, error)
}

// UserService defines the interface for user operations
type UserService interface {
	Register(ctx context.Context, creds *entity.Credentials) (*entity.AuthToken, error)
	Login(ctx context.Context, creds *entity.Credentials) (*entity.AuthToken, error)
	Authenticate(ctx context.Context, token string) (int64, error)
	GetInfo(ctx context.Context, userID int64) (*entity.UserInfo, error)
	Update(ctx context.Context, userID int64, req *entity.UpdateUserRequest) (*entity.UserInfo, error)
}

// Provisioner keeps the availability window of every room filled
type Provisioner interface {
	EnsureWindow(ctx context.Context) (int64, error)
	ProvisionRoom(ctx context.Context, room *entity.Room) (int64, error)
}

// SearchCache stores full search results; implemented over Redis.
type SearchCache interface {
	Get(ctx context.Context, filter *entity.RoomSearch) ([]*entity.Room, bool, error)
	Set(ctx context.Context, filter *entity.RoomSearch, rooms []*entity.Room) error
	InvalidateAll(ctx context.Context) error
}

// EventPublisher отправляет события бронирований во внешнюю шину
type EventPublisher interface {
	Publish(ctx context.Context, event *entity.BookingEvent) error
}

// Deps collects what the services are built from.
type Deps struct {
	Store      *database.Store
	Retry      *retry.RetryManager
	Clock      *BookingClock
	Cache      SearchCache
	Events     EventPublisher
	Tokens     *auth.TokenManager
	PageSize   int
	WindowDays int
}

type Services struct {
	Planner     Planner
	Reconciler  Reconciler
	Ledger      Ledger
	Rooms       RoomService
	Users       UserService
	Provisioner Provisioner
}

func NewServices(d Deps) *Services {
	runner := newTxRunner(d.Store.Tx, d.Retry)
	notifier := newChangeNotifier(d.Cache, d.Events, d.Clock)

	return &Services{
		Planner:     newPlanner(d.Store, runner, d.Clock, notifier),
		Reconciler:  newReconciler(d.Store, runner, d.Clock, notifier),
		Ledger:      newLedger(d.Store, runner, d.Clock, notifier),
		Rooms:       newRoomService(d.Store.Rooms, d.Cache, d.Clock, d.PageSize),
		Users:       newUserService(d.Store.Users, d.Tokens),
		Provisioner: newProvisioner(d.Store.Rooms, d.Store.Availabilities, d.Cache, d.Clock, d.WindowDays),
	}
}
