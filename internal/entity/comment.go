package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5

	// thresholds of the anomaly filter
	maxCommentSymbols = 3
	maxCommentWords   = 100
	commentSymbols    = "@#$%^&*,.?{}|<>"
)

type Comment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	BookingID uuid.UUID `json:"booking_id" db:"booking_id"`
	Rating    int       `json:"rating" db:"rating"`
	Text      string    `json:"comment" db:"text"`
	Anomalous bool      `json:"oddComFlag" db:"anomalous"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CommentRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

// IsAnomalousComment flags texts that carry links, too much punctuation or too many words.
func IsAnomalousComment(text string) bool {
	if strings.Contains(text, "http://") || strings.Contains(text, "https://") {
		return true
	}
	symbols := 0
	for _, r := range text {
		if strings.ContainsRune(commentSymbols, r) {
			symbols++
		}
	}
	if symbols > maxCommentSymbols {
		return true
	}
	return len(strings.Split(text, " ")) > maxCommentWords
}
