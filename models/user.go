package models

import (
	"time"

	"github.com/lib/pq"
)

// User is an authenticated identity. The application never hard-deletes a
// user row from the client side: account deletion only sets the
// deletion_requested metadata flags.
type User struct {
	ID                  string         `json:"id" db:"id"`
	Email               string         `json:"email" db:"email"`
	PasswordHash        string         `json:"-" db:"password_hash"`
	EmailConfirmed      bool           `json:"email_confirmed" db:"email_confirmed"`
	ConfirmationToken   *string        `json:"-" db:"confirmation_token"`
	VerifiedShop        bool           `json:"verified_shop" db:"verified_shop"`
	DeletionRequested   bool           `json:"deletion_requested" db:"deletion_requested"`
	DeletionRequestedAt *time.Time     `json:"deletion_requested_at,omitempty" db:"deletion_requested_at"`
	LinkedProviders     pq.StringArray `json:"linked_providers" db:"linked_providers"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`
}

type Credentials struct {
	Email   string `json:"email"`
	Password string `json:"password"`
}
