package entity

import "time"

type RoomKind string

const (
	RoomKindPublic  RoomKind = "public"
	RoomKindPrivate RoomKind = "private"
)

type Room struct {
	ID          int64     `json:"id" db:"id"`
	Number      int       `json:"room_number" db:"room_number"`
	Kind        RoomKind  `json:"kind" db:"kind"`
	Size        int       `json:"size" db:"size"`
	Description string    `json:"description" db:"description"`
	Amenities   []string  `json:"amenities" db:"amenities"`
	Tags        []string  `json:"tags" db:"tags"`
	GoodRatings int       `json:"good_ratings" db:"good_ratings"`
	BadRatings  int       `json:"bad_ratings" db:"bad_ratings"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// IsPrivate reports whether the room is booked all-or-nothing per slot.
func (r *Room) IsPrivate() bool {
	return r.Kind == RoomKindPrivate
}

// InitialCell is the value every cell of a freshly provisioned day takes.
func (r *Room) InitialCell() int {
	if r.IsPrivate() || r.Size <= 0 {
		return CellFree
	}
	return r.Size
}

// RoomSearch holds the normalized filters of a room listing request.
type RoomSearch struct {
	Page      int       `json:"page"`
	DateFrom  time.Time `json:"date_from"`
	DateTo    time.Time `json:"date_to"`
	RoomSize  int       `json:"room_size"`
	Amenities []string  `json:"amenities"`
	Tags      []string  `json:"tags"`
}

type RoomPage struct {
	Page         int     `json:"page"`
	TotalPages   int     `json:"totalPages"`
	TotalResults int     `json:"totalResults"`
	Results      []*Room `json:"results"`
}
