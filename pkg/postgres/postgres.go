package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AirTechNEO/coworkconnect/config"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithField("host", cfg.Host).Info("Successfully connected to PostgreSQL")
	return db, nil
}

// Migrations is the schema, applied in order; every statement is idempotent.
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id BIGSERIAL PRIMARY KEY,
		room_number INTEGER NOT NULL DEFAULT 0,
		kind VARCHAR(10) NOT NULL CHECK (kind IN ('public', 'private')),
		size INTEGER NOT NULL CHECK (size >= 0),
		description TEXT NOT NULL DEFAULT '',
		amenities TEXT[] NOT NULL DEFAULT '{}',
		tags TEXT[] NOT NULL DEFAULT '{}',
		good_ratings INTEGER NOT NULL DEFAULT 0,
		bad_ratings INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS availabilities (
		id BIGSERIAL PRIMARY KEY,
		room_id BIGINT NOT NULL REFERENCES rooms(id),
		date DATE NOT NULL,
		hours INTEGER[] NOT NULL CHECK (array_length(hours, 1) = 12),
		version BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (room_id, date)
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		preferences TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		room_id BIGINT NOT NULL REFERENCES rooms(id),
		date_start DATE NOT NULL,
		date_end DATE NOT NULL,
		slot_start INTEGER NOT NULL CHECK (slot_start BETWEEN 0 AND 11),
		slot_end INTEGER NOT NULL CHECK (slot_end BETWEEN 0 AND 11),
		duration INTEGER NOT NULL CHECK (duration > 0),
		party_size INTEGER NOT NULL CHECK (party_size > 0),
		exclusive_cells INTEGER[] NOT NULL DEFAULT '{}',
		cancelled BOOLEAN NOT NULL DEFAULT FALSE,
		cancelled_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS booking_comments (
		id UUID PRIMARY KEY,
		booking_id UUID UNIQUE NOT NULL REFERENCES bookings(id),
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		text TEXT NOT NULL,
		anomalous BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	// Indexes
	`CREATE INDEX IF NOT EXISTS idx_availabilities_room_date ON availabilities(room_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_availabilities_date ON availabilities(date)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_rooms_amenities ON rooms USING GIN (amenities)`,
	`CREATE INDEX IF NOT EXISTS idx_rooms_tags ON rooms USING GIN (tags)`,
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	for i, migration := range Migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", i, err)
		}
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}
