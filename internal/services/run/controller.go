package run

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aweston/flagchase/internal/dependencies/clock"
	"github.com/aweston/flagchase/internal/dependencies/random"
	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/services/actor"
	"github.com/aweston/flagchase/internal/storage"
)

// MaxPinAttempts bounds the optimistic pin retry loop. Pins are
// sparse in a 36^6 keyspace, so exhausting this signals an
// operational problem rather than caller error.
const MaxPinAttempts = 10

// Controller manages run lifecycle and pin assignment
type Controller struct {
	store  storage.Store
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

// NewController creates a new run controller
func NewController(store storage.Store, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Controller {
	return &Controller{
		store:  store,
		clock:  clk,
		random: rnd,
		logger: logger,
	}
}

// CreateRun creates a run owned by the calling user. When no pin is
// supplied a unique one is assigned.
func (c *Controller) CreateRun(ctx context.Context, caller model.Actor, runType, title string, pin *string) (*model.Run, error) {
	if err := actor.RequireUser(caller); err != nil {
		return nil, err
	}

	run := model.NewRun(model.UserID(caller.ID), runType, title, c.clock.Now())
	run.Pin = pin
	if err := c.store.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	if run.Pin == nil {
		assigned, err := c.assignUniquePin(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		run.Pin = &assigned
	}

	return run, nil
}

// assignUniquePin generates pin candidates until the store accepts
// one, bounded at MaxPinAttempts
func (c *Controller) assignUniquePin(ctx context.Context, id model.RunID) (string, error) {
	for attempt := 0; attempt < MaxPinAttempts; attempt++ {
		pin := c.random.String(model.PinLength, model.PinAlphabet)
		err := c.store.AssignPin(ctx, id, pin)
		if err == nil {
			return pin, nil
		}
		if errors.Is(err, model.ErrPinTaken) {
			c.logger.Debug("pin collision, retrying",
				slog.String("run_id", string(id)),
				slog.Int("attempt", attempt+1),
			)
			continue
		}
		return "", err
	}
	return "", model.ErrPinExhausted
}

// GetRun retrieves a run with its flags and questions
func (c *Controller) GetRun(ctx context.Context, id model.RunID) (*model.Run, error) {
	return c.store.GetRun(ctx, id)
}

// GetRunByPin looks a run up by its join pin
func (c *Controller) GetRunByPin(ctx context.Context, pin string) (*model.Run, error) {
	return c.store.GetRunByPin(ctx, pin)
}

// UpdateRun updates a run's title and type, owner only
func (c *Controller) UpdateRun(ctx context.Context, caller model.Actor, id model.RunID, runType, title string) (*model.Run, error) {
	if err := actor.RequireUser(caller); err != nil {
		return nil, err
	}

	run, err := c.store.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(string(run.OwnerID)) {
		return nil, model.ErrNotOwner
	}

	if runType != "" {
		run.Type = runType
	}
	if title != "" {
		run.Title = title
	}
	run.UpdatedAt = c.clock.Now()

	if err := c.store.UpdateRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// DeleteRun removes a run and everything attached to it, owner only
func (c *Controller) DeleteRun(ctx context.Context, caller model.Actor, id model.RunID) error {
	if err := actor.RequireUser(caller); err != nil {
		return err
	}

	run, err := c.store.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if !caller.Owns(string(run.OwnerID)) {
		return model.ErrNotOwner
	}

	return c.store.DeleteRun(ctx, id)
}
