package models

import "time"

// ProfileRole mirrors the role enum on the profiles table.
type ProfileRole string

const (
	RolePlayer ProfileRole = "player"
	RoleShop   ProfileRole = "shop"
)

// Profile is the public-facing record for a user, one-to-one with User and
// keyed by the same id. Created and updated via upsert.
type Profile struct {
	ID              string      `json:"id" db:"id"`
	Username        *string     `json:"username,omitempty" db:"username"`
	FullName        *string     `json:"full_name,omitempty" db:"full_name"`
	PokemonPlayerID *string     `json:"pokemon_player_id,omitempty" db:"pokemon_player_id"`
	Role            ProfileRole `json:"role" db:"role"`
	AvatarURL       *string     `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}
