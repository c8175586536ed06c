package models

import (
	"time"

	"github.com/google/uuid"
)

// Social platforms offered by the dashboard.
var SocialPlatforms = []string{"facebook", "twitter", "instagram", "linkedin", "youtube"}

// Payment apps offered by the dashboard.
var PaymentApps = []string{"gpay", "phonepe", "paytm"}

// PaymentEntry is a UPI payee for one payment app.
type PaymentEntry struct {
	UPIID     string `json:"upiId"`
	PayerName string `json:"payerName,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Currency  string `json:"currency,omitempty"`
}

// Links groups the two link collections that are saved together.
type Links struct {
	Social  map[string]string       `json:"social"`
	Payment map[string]PaymentEntry `json:"payment"`
}

// Normalize replaces missing collections with empty ones.
func (l *Links) Normalize() {
	if l.Social == nil {
		l.Social = map[string]string{}
	}
	if l.Payment == nil {
		l.Payment = map[string]PaymentEntry{}
	}
}

// Profile is the public link document of a user, keyed by username.
type Profile struct {
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	Username        string    `json:"username" db:"username"`
	Links           Links     `json:"links"`
	DefaultRedirect string    `json:"defaultRedirect" db:"default_redirect"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// NewProfile returns an empty profile as created at registration.
func NewProfile(userID uuid.UUID, username string) *Profile {
	p := &Profile{UserID: userID, Username: username}
	p.Links.Normalize()
	return p
}
