package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// TournamentStatus mirrors the status enum on the tournaments table.
// Transitions are not validated by the application; any owner may set any
// value and the schema is the only authority.
type TournamentStatus string

const (
	StatusDraft     TournamentStatus = "draft"
	StatusPublished TournamentStatus = "published"
	StatusCancelled TournamentStatus = "cancelled"
	StatusCompleted TournamentStatus = "completed"
)

// Tournament is a single event hosted by a shop.
type Tournament struct {
	ID                   string           `json:"id" db:"id"`
	Title                string           `json:"title" db:"title"`
	Description          string           `json:"description" db:"description"`
	Date                 time.Time        `json:"date" db:"date"`
	Location             string           `json:"location" db:"location"`
	AccessibilityDetails json.RawMessage  `json:"accessibility_details,omitempty" db:"accessibility_details"`
	Tags                 pq.StringArray   `json:"tags" db:"tags"`
	SeatLimit            int              `json:"seat_limit" db:"seat_limit"`
	ShopID               string           `json:"shop_id" db:"shop_id"`
	Status               TournamentStatus `json:"status" db:"status"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at" db:"updated_at"`
}
