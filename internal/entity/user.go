package entity

import "time"

type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Preferences  []string  `json:"preferences" db:"preferences"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UserInfo is the public part of a profile.
type UserInfo struct {
	Email       string   `json:"email"`
	Preferences []string `json:"preferences"`
}

type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	CurrPassword string   `json:"currPassword"`
	NewPassword  string   `json:"newPassword"`
	NewEmail     string   `json:"newEmail"`
	Preferences  []string `json:"preferences"`
}

type AuthToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
