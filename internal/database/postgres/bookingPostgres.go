package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const bookingSelect = `
		SELECT
			b.id, b.user_id, b.room_id, b.date_start, b.date_end, b.slot_start, b.slot_end,
			b.duration, b.party_size, b.exclusive_cells, b.cancelled, b.cancelled_at, b.created_at,
			c.id, c.rating, c.text, c.anomalous, c.created_at
		FROM bookings b
		LEFT JOIN booking_comments c ON c.booking_id = b.id
	`

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) database.BookingRepository {
	return &bookingRepository{db: db}
}

// Create appends a booking to the user's ledger
func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (
			id, user_id, room_id, date_start, date_end, slot_start, slot_end,
			duration, party_size, exclusive_cells, cancelled, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}

	cells := make([]int64, len(booking.ExclusiveCells))
	for i, c := range booking.ExclusiveCells {
		cells[i] = int64(c)
	}

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		booking.ID,
		booking.UserID,
		booking.RoomID,
		booking.DateStart.Format(entity.DateLayout),
		booking.DateEnd.Format(entity.DateLayout),
		booking.SlotStart,
		booking.SlotEnd,
		booking.Duration,
		booking.PartySize,
		pq.Array(cells),
		booking.Cancelled,
		booking.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetForUser retrieves a booking only if it belongs to the user
func (r *bookingRepository) GetForUser(ctx context.Context, userID int64, id uuid.UUID) (*entity.Booking, error) {
	query := bookingSelect + `WHERE b.id = $1 AND b.user_id = $2`

	booking, err := scanBooking(conn(ctx, r.db).QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, entity.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// ListByUser retrieves the ledger of a user in booking order
func (r *bookingRepository) ListByUser(ctx context.Context, userID int64, onlyCommented bool) ([]*entity.Booking, error) {
	query := bookingSelect + `WHERE b.user_id = $1`
	if onlyCommented {
		query += ` AND c.id IS NOT NULL`
	}
	query += ` ORDER BY b.created_at ASC, b.id ASC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings by user: %w", err)
	}
	defer rows.Close()

	bookings := make([]*entity.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE bookings SET cancelled = TRUE, cancelled_at = $2 WHERE id = $1 AND cancelled = FALSE`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, id, at)
	if err != nil {
		return classify(fmt.Errorf("failed to cancel booking: %w", err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrAlreadyCancelled
	}
	return nil
}

func (r *bookingRepository) AddComment(ctx context.Context, comment *entity.Comment) error {
	query := `
		INSERT INTO booking_comments (id, booking_id, rating, text, anomalous, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		comment.ID,
		comment.BookingID,
		comment.Rating,
		comment.Text,
		comment.Anomalous,
		comment.CreatedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrAlreadyCommented
	}
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

func scanBooking(row rowScanner) (*entity.Booking, error) {
	var (
		b           entity.Booking
		cells       []int64
		cancelledAt sql.NullTime
		commentID   uuid.NullUUID
		rating      sql.NullInt64
		text        sql.NullString
		anomalous   sql.NullBool
		commentedAt sql.NullTime
	)

	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.RoomID,
		&b.DateStart,
		&b.DateEnd,
		&b.SlotStart,
		&b.SlotEnd,
		&b.Duration,
		&b.PartySize,
		pq.Array(&cells),
		&b.Cancelled,
		&cancelledAt,
		&b.CreatedAt,
		&commentID,
		&rating,
		&text,
		&anomalous,
		&commentedAt,
	)
	if err != nil {
		return nil, err
	}

	b.DateStart = entity.DateOf(b.DateStart)
	b.DateEnd = entity.DateOf(b.DateEnd)
	b.ExclusiveCells = make([]int, len(cells))
	for i, c := range cells {
		b.ExclusiveCells[i] = int(c)
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}
	if commentID.Valid {
		b.Comment = &entity.Comment{
			ID:        commentID.UUID,
			BookingID: b.ID,
			Rating:    int(rating.Int64),
			Text:      text.String,
			Anomalous: anomalous.Bool,
			CreatedAt: commentedAt.Time,
		}
	}
	return &b, nil
}
