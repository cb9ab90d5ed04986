package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/lib/pq"
)

type availabilityRepository struct {
	db *sql.DB
}

func NewAvailabilityRepository(db *sql.DB) database.AvailabilityRepository {
	return &availabilityRepository{db: db}
}

// FetchWindow retrieves the day records of a room between two dates, both included
func (r *availabilityRepository) FetchWindow(ctx context.Context, roomID int64, from, to time.Time) ([]*entity.Availability, error) {
	query := `
		SELECT id, room_id, date, hours, version, updated_at
		FROM availabilities
		WHERE room_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query,
		roomID,
		from.Format(entity.DateLayout),
		to.Format(entity.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability window: %w", err)
	}
	defer rows.Close()

	records := make([]*entity.Availability, 0)
	for rows.Next() {
		var (
			rec   entity.Availability
			hours []int64
		)
		err := rows.Scan(
			&rec.ID,
			&rec.RoomID,
			&rec.Date,
			pq.Array(&hours),
			&rec.Version,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		if err := rec.SetHours(hours); err != nil {
			return nil, fmt.Errorf("availability %d: %w", rec.ID, err)
		}
		rec.Date = entity.DateOf(rec.Date)
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating availabilities: %w", err)
	}

	return records, nil
}

// UpdateCells overwrites the grid of one day, guarded by the version read earlier
func (r *availabilityRepository) UpdateCells(ctx context.Context, rec *entity.Availability) error {
	query := `
		UPDATE availabilities
		SET hours = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4
	`

	now := time.Now()
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		pq.Array(rec.HoursSlice()),
		now,
		rec.ID,
		rec.Version,
	)
	if err != nil {
		return classify(fmt.Errorf("failed to update availability: %w", err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrConcurrentUpdate.Withf("availability %d changed since it was read", rec.ID)
	}

	rec.Version++
	rec.UpdatedAt = now
	return nil
}

// CreateBatch inserts day records, skipping days that already exist
func (r *availabilityRepository) CreateBatch(ctx context.Context, recs []*entity.Availability) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO availabilities (room_id, date, hours, version, updated_at) VALUES `)
	now := time.Now()
	args := make([]interface{}, 0, len(recs)*4)

	for i, rec := range recs {
		if i > 0 {
			sb.WriteString(",")
		}
		n := i * 4
		fmt.Fprintf(&sb, "($%d, $%d, $%d, 0, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, rec.RoomID, rec.Date.Format(entity.DateLayout), pq.Array(rec.HoursSlice()), now)
	}
	sb.WriteString(` ON CONFLICT (room_id, date) DO NOTHING`)

	result, err := conn(ctx, r.db).ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert availabilities: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// LatestDate returns the last provisioned day of a room
func (r *availabilityRepository) LatestDate(ctx context.Context, roomID int64) (time.Time, bool, error) {
	query := `SELECT MAX(date) FROM availabilities WHERE room_id = $1`

	var latest sql.NullTime
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, roomID).Scan(&latest); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get latest availability date: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	return entity.DateOf(latest.Time), true, nil
}
