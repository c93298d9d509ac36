package models

import "time"

// ChatMsgMaxLen caps a single chat message.
const ChatMsgMaxLen = 500

// ChatMessage is one line of per-game chat.
type ChatMessage struct {
	ID        int64     `json:"id"`
	GameID    int64     `json:"game_id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`

	// Joined from users.
	Username string `json:"username,omitempty"`
}
