package models

import "time"

// VerificationStatus is the display status derived for a user's shop
// verification. Only "pending" is ever stored on a request row; "verified"
// is reflected onto the user record out-of-band and takes precedence.
type VerificationStatus string

const (
	VerificationNone     VerificationStatus = "none"
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
)

// ShopVerificationRequest is a user's application to be recognized as a
// shop. Nothing prevents multiple pending requests per user; only the most
// recent one is consulted for display.
type ShopVerificationRequest struct {
	ID           string             `json:"id" db:"id"`
	UserID       string             `json:"user_id" db:"user_id"`
	ShopEmail    string             `json:"shop_email" db:"shop_email"`
	ShopIDCode   string             `json:"shop_id" db:"shop_id_code"`
	ShopImageURL string             `json:"shop_image" db:"shop_image_url"`
	Status       VerificationStatus `json:"status" db:"status"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}
