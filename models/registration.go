package models

import (
	"encoding/json"
	"time"
)

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// TournamentRegistration links a player to a tournament, optionally carrying
// a structured deck list.
type TournamentRegistration struct {
	ID           string             `json:"id" db:"id"`
	TournamentID string             `json:"tournament_id" db:"tournament_id"`
	PlayerID     string             `json:"player_id" db:"player_id"`
	DeckList     json.RawMessage    `json:"deck_list,omitempty" db:"deck_list"`
	Status       RegistrationStatus `json:"status" db:"status"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}
