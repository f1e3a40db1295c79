package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Typed identifiers for domain entities
type (
	RunID  string
	UserID string
)

const (
	// PinLength is the length of generated run join pins
	PinLength = 6
	// PinAlphabet is the characters used in run pins
	PinAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Run is an author-defined quest template: ordered geolocated flags
// plus attached questions. Pin is a globally unique join code, nil
// until one is assigned.
type Run struct {
	bun.BaseModel `bun:"table:runs,alias:r" json:"-"`

	ID        RunID     `bun:"id,pk" json:"id"`
	OwnerID   UserID    `bun:"owner_id,notnull" json:"owner_id"`
	Type      string    `bun:"type,notnull" json:"type"`
	Title     string    `bun:"title,notnull" json:"title"`
	Pin       *string   `bun:"pin,unique,nullzero" json:"pin"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`

	Flags     []*Flag     `bun:"rel:has-many,join:id=run_id" json:"flags,omitempty"`
	Questions []*Question `bun:"rel:has-many,join:id=run_id" json:"questions,omitempty"`
}

// NewRun creates a Run with a freshly assigned id. Identifiers are
// assigned here, never by the persistence layer.
func NewRun(ownerID UserID, runType, title string, now time.Time) *Run {
	return &Run{
		ID:        RunID(uuid.NewString()),
		OwnerID:   ownerID,
		Type:      runType,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RunCounter tracks the last assigned flag number for a run. One row
// is created alongside each run and is always the lock target for
// flag allocation, so two concurrent first-flag creations serialize
// even when the run has no flags yet.
type RunCounter struct {
	bun.BaseModel `bun:"table:run_counters,alias:rc" json:"-"`

	RunID          RunID `bun:"run_id,pk" json:"run_id"`
	LastFlagNumber int   `bun:"last_flag_number,notnull" json:"last_flag_number"`
}
