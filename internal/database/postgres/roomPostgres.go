package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/lib/pq"
)

const roomColumns = `r.id, r.room_number, r.kind, r.size, r.description, r.amenities, r.tags,
			r.good_ratings, r.bad_ratings, r.created_at`

type roomRepository struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) database.RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(ctx context.Context, room *entity.Room) error {
	query := `
		INSERT INTO rooms (room_number, kind, size, description, amenities, tags, good_ratings, bad_ratings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	now := time.Now()
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		room.Number,
		room.Kind,
		room.Size,
		room.Description,
		pq.Array(nonNil(room.Amenities)),
		pq.Array(nonNil(room.Tags)),
		room.GoodRatings,
		room.BadRatings,
		now,
	).Scan(&room.ID)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	room.CreatedAt = now
	return nil
}

func (r *roomRepository) GetByID(ctx context.Context, id int64) (*entity.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms r WHERE r.id = $1`

	room, err := scanRoom(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

func (r *roomRepository) GetAll(ctx context.Context) ([]*entity.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms r ORDER BY r.id`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	return collectRooms(rows)
}

// Search finds rooms that still have a non-closed cell in the date range
func (r *roomRepository) Search(ctx context.Context, filter *entity.RoomSearch) ([]*entity.Room, error) {
	query := `
		SELECT ` + roomColumns + `
		FROM rooms r
		WHERE r.size >= $3
		  AND r.amenities @> $4
		  AND r.tags @> $5
		  AND EXISTS (
			SELECT 1
			FROM availabilities a, unnest(a.hours) AS cell
			WHERE a.room_id = r.id AND a.date BETWEEN $1 AND $2 AND cell <> 0
		  )
		ORDER BY r.id
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query,
		filter.DateFrom.Format(entity.DateLayout),
		filter.DateTo.Format(entity.DateLayout),
		filter.RoomSize,
		pq.Array(nonNil(filter.Amenities)),
		pq.Array(nonNil(filter.Tags)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search rooms: %w", err)
	}
	defer rows.Close()

	return collectRooms(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRoom(row rowScanner) (*entity.Room, error) {
	var room entity.Room
	err := row.Scan(
		&room.ID,
		&room.Number,
		&room.Kind,
		&room.Size,
		&room.Description,
		pq.Array(&room.Amenities),
		pq.Array(&room.Tags),
		&room.GoodRatings,
		&room.BadRatings,
		&room.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func collectRooms(rows *sql.Rows) ([]*entity.Room, error) {
	rooms := make([]*entity.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rooms: %w", err)
	}
	return rooms, nil
}

// nonNil keeps pq from sending NULL, which would never match @>
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
