package model

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FlagID identifies a flag
type FlagID string

// Flag is one geolocated waypoint in a run. FlagNumber is assigned by
// the store when the flag is created: positive, unique within the run,
// dense starting at 1, and immutable afterwards.
type Flag struct {
	bun.BaseModel `bun:"table:flags,alias:f" json:"-"`

	ID         FlagID  `bun:"id,pk" json:"id"`
	RunID      RunID   `bun:"run_id,notnull" json:"run_id"`
	FlagNumber int     `bun:"flag_number,notnull" json:"flag_number"`
	Latitude   float64 `bun:"latitude,notnull" json:"latitude"`
	Longitude  float64 `bun:"longitude,notnull" json:"longitude"`
}

// NewFlag creates a Flag with a fresh id and no flag number yet; the
// number is assigned when the store persists it.
func NewFlag(runID RunID, lat, lng float64) *Flag {
	return &Flag{
		ID:        FlagID(uuid.NewString()),
		RunID:     runID,
		Latitude:  lat,
		Longitude: lng,
	}
}
