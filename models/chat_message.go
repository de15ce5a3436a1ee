package models

import "time"

// ChatMessage mirrors the chat_messages table. There is no delivery
// transport for chat in this application; the type exists for the schema.
type ChatMessage struct {
	ID           string    `json:"id" db:"id"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Content      string    `json:"content" db:"content"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
