// Package models defines the secret record and the result shapes returned
// by the lifecycle operations.
package models

import "time"

// Secret is the persistent record for one shared secret.
type Secret struct {
	// ID is the opaque identifier used as the public retrieval key.
	ID string
	// Ciphertext is the encrypted payload together with its IV, stored as
	// one opaque blob. It is never exposed through listings.
	Ciphertext string
	// PasswordHash is the bcrypt hash of the reveal password; empty means
	// the secret has no password gate.
	PasswordHash string
	// OneTime marks the secret unrevealable after its first successful view.
	OneTime bool
	// Viewed records that a successful reveal has occurred.
	Viewed bool
	// ExpiresAt is the time after which the secret is gone.
	ExpiresAt time.Time
	// CreatedAt is the creation timestamp, immutable.
	CreatedAt time.Time
	// OwnerID identifies the authenticated creator; empty for anonymous
	// secrets.
	OwnerID string
}

// Listing status values derived from the stored flags and current time.
const (
	StatusActive  = "active"
	StatusExpired = "expired"
	StatusViewed  = "viewed"
)

// SecretSummary is the owner-facing view of a secret: metadata plus a
// derived status, never the ciphertext or the password hash itself.
type SecretSummary struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	OneTime     bool      `json:"oneTime"`
	Viewed      bool      `json:"viewed"`
	HasPassword bool      `json:"hasPassword"`
	Status      string    `json:"status"`
}

// RevealResult is the outcome of a reveal that did not fail a gate. When
// RequiresPassword is true the text is withheld and the caller may retry
// the same id with a password.
type RevealResult struct {
	ID               string    `json:"id"`
	Text             string    `json:"text,omitempty"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RequiresPassword bool      `json:"requiresPassword"`
	OneTime          bool      `json:"oneTime"`
	Viewed           bool      `json:"viewed"`
}
