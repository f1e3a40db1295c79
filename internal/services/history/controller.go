package history

import (
	"context"
	"log/slog"

	"github.com/aweston/flagchase/internal/dependencies/clock"
	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/services/actor"
	"github.com/aweston/flagchase/internal/storage"
)

// Controller governs the attempt state machine. For each (actor,
// run) pair: no active row, then exactly one active row, then that
// row ended; ended attempts accumulate across repeated plays.
type Controller struct {
	store  storage.Store
	clock  clock.Clock
	logger *slog.Logger
}

// NewController creates a new history controller
func NewController(store storage.Store, clk clock.Clock, logger *slog.Logger) *Controller {
	return &Controller{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// StartRun begins an attempt. The store rejects a second active
// attempt for the same (actor, run) pair with model.ErrHistoryActive,
// and snapshots every flag currently on the run.
func (c *Controller) StartRun(ctx context.Context, caller model.Actor, runID model.RunID) (*model.History, error) {
	run, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	history := model.NewHistory(caller, run, c.clock.Now())
	started, err := c.store.StartHistory(ctx, history)
	if err != nil {
		return nil, err
	}

	c.logger.Info("run attempt started",
		slog.String("history_id", string(started.ID)),
		slog.String("run_id", string(runID)),
		slog.String("actor_id", caller.ID),
	)
	return started, nil
}

// EndRun finishes an attempt. Only the actor who started it may end
// it; ending twice returns model.ErrHistoryEnded.
func (c *Controller) EndRun(ctx context.Context, caller model.Actor, id model.HistoryID) (*model.History, error) {
	if _, err := c.owned(ctx, caller, id); err != nil {
		return nil, err
	}
	return c.store.EndHistory(ctx, id, c.clock.Now())
}

// MarkFlagReached records progress on one flag snapshot. The reach
// timestamp is set on the first call only; points and distance are
// overwritten every call. A nil points defaults to 0.
func (c *Controller) MarkFlagReached(ctx context.Context, caller model.Actor, id model.HistoryID, flagID model.FlagID, points *int, distance *float64) (*model.HistoryFlag, error) {
	if _, err := c.owned(ctx, caller, id); err != nil {
		return nil, err
	}

	p := 0
	if points != nil {
		p = *points
	}
	return c.store.MarkHistoryFlag(ctx, id, flagID, c.clock.Now(), p, distance)
}

// GetHistory returns one attempt with its run and flag snapshots,
// scoped to the calling actor
func (c *Controller) GetHistory(ctx context.Context, caller model.Actor, id model.HistoryID) (*model.History, error) {
	return c.owned(ctx, caller, id)
}

// ListHistories returns the calling actor's attempts
func (c *Controller) ListHistories(ctx context.Context, caller model.Actor) ([]*model.History, error) {
	return c.store.ListHistories(ctx, caller.ID)
}

// DeleteHistory removes an attempt. Guests cannot delete history.
func (c *Controller) DeleteHistory(ctx context.Context, caller model.Actor, id model.HistoryID) error {
	if err := actor.RequireUser(caller); err != nil {
		return err
	}
	if _, err := c.owned(ctx, caller, id); err != nil {
		return err
	}
	return c.store.DeleteHistory(ctx, id)
}

// owned loads a history and verifies it belongs to the caller
func (c *Controller) owned(ctx context.Context, caller model.Actor, id model.HistoryID) (*model.History, error) {
	history, err := c.store.GetHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(history.ActorID) {
		return nil, model.ErrNotOwner
	}
	return history, nil
}
