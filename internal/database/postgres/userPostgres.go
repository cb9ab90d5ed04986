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

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) database.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (email, password_hash, preferences, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	now := time.Now()
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		user.Email,
		user.PasswordHash,
		pq.Array(nonNil(user.Preferences)),
		now,
	).Scan(&user.ID)
	if isUniqueViolation(err) {
		return entity.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.CreatedAt = now
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `SELECT id, email, password_hash, preferences, created_at FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT id, email, password_hash, preferences, created_at FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg interface{}) (*entity.User, error) {
	var user entity.User
	err := conn(ctx, r.db).QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		pq.Array(&user.Preferences),
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `UPDATE users SET email = $1, password_hash = $2, preferences = $3 WHERE id = $4`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		user.Email,
		user.PasswordHash,
		pq.Array(nonNil(user.Preferences)),
		user.ID,
	)
	if isUniqueViolation(err) {
		return entity.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

// LockForUpdate takes the row lock of the user; it is held until the surrounding transaction ends
func (r *userRepository) LockForUpdate(ctx context.Context, id int64) error {
	query := `SELECT 1 FROM users WHERE id = $1 FOR UPDATE`

	var dummy int
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&dummy)
	if err == sql.ErrNoRows {
		return entity.ErrUserNotFound
	}
	if err != nil {
		return classify(fmt.Errorf("failed to lock user: %w", err))
	}
	return nil
}
