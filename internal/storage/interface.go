package storage

import (
	"context"
	"time"

	"github.com/aweston/flagchase/internal/model"
)

// Store defines the interface for relational data persistence.
//
// The invariant-bearing operations (CreateFlags, AssignPin,
// StartHistory, EndHistory, MarkHistoryFlag) must be atomic: under
// concurrent callers from any number of processes they must uphold
// dense per-run flag numbering, global pin uniqueness, the single
// active history rule and monotonic reach timestamps. The postgres
// implementation does this with transactions and row locks; the
// memory implementation with a mutex.
type Store interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Run operations
	CreateRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, id model.RunID) (*model.Run, error)
	GetRunByPin(ctx context.Context, pin string) (*model.Run, error)
	UpdateRun(ctx context.Context, run *model.Run) error
	DeleteRun(ctx context.Context, id model.RunID) error
	// AssignPin persists the pin on the run row, returning
	// model.ErrPinTaken if another run already holds it.
	AssignPin(ctx context.Context, id model.RunID, pin string) error

	// Flag operations
	// CreateFlags assigns each flag the next dense flag number for
	// the run, in slice order, and persists them. The assigned
	// numbers are written back into the given flags.
	CreateFlags(ctx context.Context, runID model.RunID, flags []*model.Flag) error
	GetFlag(ctx context.Context, id model.FlagID) (*model.Flag, error)
	ListFlags(ctx context.Context, runID model.RunID) ([]*model.Flag, error)
	UpdateFlag(ctx context.Context, flag *model.Flag) error
	// DeleteFlags removes only flags that belong to the given run,
	// ignoring ids that do not. Returns the number deleted.
	DeleteFlags(ctx context.Context, runID model.RunID, ids []model.FlagID) (int, error)

	// Question operations
	SaveQuestion(ctx context.Context, question *model.Question) error
	GetQuestion(ctx context.Context, id model.QuestionID) (*model.Question, error)
	ListQuestions(ctx context.Context, runID model.RunID) ([]*model.Question, error)
	UpdateQuestion(ctx context.Context, question *model.Question) error
	DeleteQuestions(ctx context.Context, runID model.RunID, ids []model.QuestionID) (int, error)

	// Question option operations
	SaveOption(ctx context.Context, option *model.QuestionOption) error
	GetOption(ctx context.Context, id model.OptionID) (*model.QuestionOption, error)
	UpdateOption(ctx context.Context, option *model.QuestionOption) error
	DeleteOptions(ctx context.Context, questionID model.QuestionID, ids []model.OptionID) (int, error)

	// History operations
	// StartHistory inserts the history plus one HistoryFlag snapshot
	// per flag currently on the run, returning model.ErrHistoryActive
	// if the actor already has an active attempt for the run. The
	// returned history has its run and flags attached.
	StartHistory(ctx context.Context, history *model.History) (*model.History, error)
	// EndHistory sets the end timestamp, returning
	// model.ErrHistoryEnded if the attempt has already ended.
	EndHistory(ctx context.Context, id model.HistoryID, endedAt time.Time) (*model.History, error)
	// MarkHistoryFlag sets the reach timestamp only if not already
	// set, always overwrites points and distance, and refreshes the
	// parent history's update timestamp.
	MarkHistoryFlag(ctx context.Context, historyID model.HistoryID, flagID model.FlagID, reachedAt time.Time, points int, distance *float64) (*model.HistoryFlag, error)
	GetHistory(ctx context.Context, id model.HistoryID) (*model.History, error)
	ListHistories(ctx context.Context, actorID string) ([]*model.History, error)
	DeleteHistory(ctx context.Context, id model.HistoryID) error
}
