package models

import "time"

// PublicOpponent marks a game request that any eligible player may accept.
const PublicOpponent int64 = 0

// Requested color choices. ColorRandom lets the accept step assign sides.
const (
	ColorWhite  = "white"
	ColorBlack  = "black"
	ColorRandom = "random"
)

// Turn-clock bounds in days per turn.
const (
	TurnDayLimitMin = 1
	TurnDayLimitMax = 60
)

// GameRequest is an open challenge. Accepting one creates a Game and deletes
// the request.
type GameRequest struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	OpponentID   int64     `json:"opponent_id"`
	TurnDayLimit int       `json:"turn_day_limit"`
	MinRating    int       `json:"min_rating"`
	MaxRating    int       `json:"max_rating"`
	Color        string    `json:"color"`
	Public       bool      `json:"public"`
	CreatedAt    time.Time `json:"created_at"`

	// Joined from users for request listings.
	Username string `json:"username,omitempty"`
	Rating   int    `json:"rating,omitempty"`
}
