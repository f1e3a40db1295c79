package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is a durable account. Guests live in the ephemeral session
// store, not here.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u" json:"-"`

	ID           UserID    `bun:"id,pk" json:"id"`
	Email        string    `bun:"email,unique,notnull" json:"email"`
	DisplayName  string    `bun:"display_name,notnull" json:"display_name"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// NewUser creates a User with a fresh id
func NewUser(email, displayName, passwordHash string, now time.Time) *User {
	return &User{
		ID:           UserID(uuid.NewString()),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// GuestProfile is the ephemeral identity behind a guest token. It is
// stored in the TTL session store and expires with it.
type GuestProfile struct {
	Token       string    `json:"token"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// VerificationTicket holds a hashed one-time token plus the pending
// profile for email verification. Single use, TTL bound.
type VerificationTicket struct {
	Email        string    `json:"email"`
	TokenHash    string    `json:"token_hash"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// ResetTicket holds a hashed one-time token for a password reset
type ResetTicket struct {
	Email     string    `json:"email"`
	TokenHash string    `json:"token_hash"`
	CreatedAt time.Time `json:"created_at"`
}
