package models

import "time"

const (
	UsernameMaxLen = 50
	PasswordMaxLen = 128

	// Rating bounds accepted at registration; out-of-range values are clamped.
	RatingMin     = 1
	RatingMax     = 3000
	RatingDefault = 1000
)

// User is a registered player.
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	Email         string    `json:"email,omitempty"`
	Rating        int       `json:"rating"`
	Notifications bool      `json:"notifications"`
	CreatedAt     time.Time `json:"created_at"`
}
