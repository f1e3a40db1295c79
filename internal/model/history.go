package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Typed identifiers for histories
type (
	HistoryID     string
	HistoryFlagID string
)

// History is one actor's recorded attempt at a run. At most one
// History per (actor, run) pair may have a nil EndedAt at any time.
// RunType and RunUpdatedAt are denormalized snapshots taken at start.
type History struct {
	bun.BaseModel `bun:"table:histories,alias:h" json:"-"`

	ID           HistoryID  `bun:"id,pk" json:"id"`
	ActorID      string     `bun:"actor_id,notnull" json:"actor_id"`
	RunID        RunID      `bun:"run_id,notnull" json:"run_id"`
	StartedAt    time.Time  `bun:"started_at,notnull" json:"started_at"`
	EndedAt      *time.Time `bun:"ended_at,nullzero" json:"ended_at"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull" json:"updated_at"`
	RunType      string     `bun:"run_type,notnull" json:"run_type"`
	RunUpdatedAt time.Time  `bun:"run_updated_at,notnull" json:"run_updated_at"`
	Position     *string    `bun:"position,nullzero" json:"position"`

	Run   *Run           `bun:"rel:belongs-to,join:run_id=id" json:"run,omitempty"`
	Flags []*HistoryFlag `bun:"rel:has-many,join:id=history_id" json:"flags,omitempty"`
}

// NewHistory creates a History for an actor starting a run, copying
// the run's denormalized metadata.
func NewHistory(actor Actor, run *Run, now time.Time) *History {
	return &History{
		ID:           HistoryID(uuid.NewString()),
		ActorID:      actor.ID,
		RunID:        run.ID,
		StartedAt:    now,
		UpdatedAt:    now,
		RunType:      run.Type,
		RunUpdatedAt: run.UpdatedAt,
	}
}

// Active reports whether the attempt is still in progress
func (h *History) Active() bool {
	return h.EndedAt == nil
}

// HistoryFlag is an immutable positional snapshot of a flag taken at
// start time, plus mutable per-attempt progress fields. ReachedAt is
// set at most once and never reset; Points and Distance may be
// overwritten on every reach call.
type HistoryFlag struct {
	bun.BaseModel `bun:"table:history_flags,alias:hf" json:"-"`

	ID        HistoryFlagID `bun:"id,pk" json:"id"`
	HistoryID HistoryID     `bun:"history_id,notnull" json:"history_id"`
	FlagID    FlagID        `bun:"flag_id,notnull" json:"flag_id"`
	Latitude  float64       `bun:"latitude,notnull" json:"latitude"`
	Longitude float64       `bun:"longitude,notnull" json:"longitude"`
	ReachedAt *time.Time    `bun:"reached_at,nullzero" json:"reached_at"`
	Distance  *float64      `bun:"distance,nullzero" json:"distance"`
	Points    *int          `bun:"points,nullzero" json:"points"`
	Tag       *string       `bun:"tag,nullzero" json:"tag"`
}

// NewHistoryFlag snapshots a flag's position for a history attempt
func NewHistoryFlag(historyID HistoryID, flag *Flag) *HistoryFlag {
	return &HistoryFlag{
		ID:        HistoryFlagID(uuid.NewString()),
		HistoryID: historyID,
		FlagID:    flag.ID,
		Latitude:  flag.Latitude,
		Longitude: flag.Longitude,
	}
}

// Reached reports whether the flag has been reached in this attempt
func (hf *HistoryFlag) Reached() bool {
	return hf.ReachedAt != nil
}
