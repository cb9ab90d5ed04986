package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/lib/pq"
)

// postgres error codes the repositories react to
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// DBTX is the part of *sql.DB and *sql.Tx the repositories use.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txKey struct{}

type txManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) database.UnitOfWork {
	return &txManager{db: db}
}

// WithinTx begins a READ COMMITTED transaction, or joins the one already carried by ctx.
func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// conn picks the transaction of ctx when there is one.
func conn(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// classify turns retryable postgres failures into entity.ErrConcurrentUpdate.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return entity.ErrConcurrentUpdate.Wrap(err)
		}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation
}

func NewStore(db *sql.DB) *database.Store {
	return &database.Store{
		Rooms:          NewRoomRepository(db),
		Availabilities: NewAvailabilityRepository(db),
		Bookings:       NewBookingRepository(db),
		Users:          NewUserRepository(db),
		Tx:             NewTxManager(db),
	}
}
