package flag

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/services/actor"
	"github.com/aweston/flagchase/internal/storage"
)

// Errors
var (
	ErrInvalidCoordinates = errors.New("latitude must be in [-90, 90] and longitude in [-180, 180]")
)

// Input is one flag creation or update payload. Pointers distinguish
// omitted fields from zero values.
type Input struct {
	ID        model.FlagID
	Latitude  *float64
	Longitude *float64
}

// Validate checks the coordinate payload of a create request
func (in Input) Validate() error {
	if in.Latitude == nil || in.Longitude == nil {
		return ErrInvalidCoordinates
	}
	if *in.Latitude < -90 || *in.Latitude > 90 {
		return ErrInvalidCoordinates
	}
	if *in.Longitude < -180 || *in.Longitude > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// Controller coordinates single and batched flag mutations, layering
// the guest gate and ownership checks over the store's number
// allocation
type Controller struct {
	store  storage.Store
	logger *slog.Logger
}

// NewController creates a new flag controller
func NewController(store storage.Store, logger *slog.Logger) *Controller {
	return &Controller{
		store:  store,
		logger: logger,
	}
}

// ownedRun loads a run and verifies the caller owns it. Ownership is
// checked once per batch, before any item is processed.
func (c *Controller) ownedRun(ctx context.Context, caller model.Actor, runID model.RunID) (*model.Run, error) {
	if err := actor.RequireUser(caller); err != nil {
		return nil, err
	}
	run, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(string(run.OwnerID)) {
		return nil, model.ErrNotOwner
	}
	return run, nil
}

// CreateFlag creates a single flag, assigning it the run's next number
func (c *Controller) CreateFlag(ctx context.Context, caller model.Actor, runID model.RunID, in Input) (*model.Flag, error) {
	if _, err := c.ownedRun(ctx, caller, runID); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	flag := model.NewFlag(runID, *in.Latitude, *in.Longitude)
	if err := c.store.CreateFlags(ctx, runID, []*model.Flag{flag}); err != nil {
		return nil, err
	}
	return flag, nil
}

// CreateFlagsBulk creates many flags in one allocation. Items that
// fail validation are skipped, not surfaced: the batch succeeds with
// whatever was valid, and the contiguous number block covers exactly
// the valid items in input order.
func (c *Controller) CreateFlagsBulk(ctx context.Context, caller model.Actor, runID model.RunID, items []Input) ([]*model.Flag, error) {
	if _, err := c.ownedRun(ctx, caller, runID); err != nil {
		return nil, err
	}

	flags := make([]*model.Flag, 0, len(items))
	for _, in := range items {
		if err := in.Validate(); err != nil {
			c.logger.Debug("skipping invalid flag in bulk create",
				slog.String("run_id", string(runID)),
				slog.String("reason", err.Error()),
			)
			continue
		}
		flags = append(flags, model.NewFlag(runID, *in.Latitude, *in.Longitude))
	}

	if len(flags) == 0 {
		return []*model.Flag{}, nil
	}
	if err := c.store.CreateFlags(ctx, runID, flags); err != nil {
		return nil, err
	}
	return flags, nil
}

// GetFlag retrieves a single flag
func (c *Controller) GetFlag(ctx context.Context, id model.FlagID) (*model.Flag, error) {
	return c.store.GetFlag(ctx, id)
}

// UpdateFlag moves a flag, owner only. The flag number never changes.
func (c *Controller) UpdateFlag(ctx context.Context, caller model.Actor, id model.FlagID, in Input) (*model.Flag, error) {
	if err := actor.RequireUser(caller); err != nil {
		return nil, err
	}

	flag, err := c.store.GetFlag(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := c.ownedRun(ctx, caller, flag.RunID); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	flag.Latitude = *in.Latitude
	flag.Longitude = *in.Longitude
	if err := c.store.UpdateFlag(ctx, flag); err != nil {
		return nil, err
	}
	return flag, nil
}

// UpdateFlagsBulk applies positional updates item by item. Invalid
// items and flags that do not belong to the run are skipped; the
// returned slice holds only the flags that were updated. Each item
// commits on its own, so a later failure never unwinds earlier items.
func (c *Controller) UpdateFlagsBulk(ctx context.Context, caller model.Actor, runID model.RunID, items []Input) ([]*model.Flag, error) {
	if _, err := c.ownedRun(ctx, caller, runID); err != nil {
		return nil, err
	}

	updated := make([]*model.Flag, 0, len(items))
	for _, in := range items {
		if in.ID == "" || in.Validate() != nil {
			continue
		}
		flag, err := c.store.GetFlag(ctx, in.ID)
		if err != nil || flag.RunID != runID {
			continue
		}
		flag.Latitude = *in.Latitude
		flag.Longitude = *in.Longitude
		if err := c.store.UpdateFlag(ctx, flag); err != nil {
			continue
		}
		updated = append(updated, flag)
	}
	return updated, nil
}

// DeleteFlag removes a single flag, owner only
func (c *Controller) DeleteFlag(ctx context.Context, caller model.Actor, id model.FlagID) error {
	if err := actor.RequireUser(caller); err != nil {
		return err
	}

	flag, err := c.store.GetFlag(ctx, id)
	if err != nil {
		return err
	}
	if _, err := c.ownedRun(ctx, caller, flag.RunID); err != nil {
		return err
	}

	_, err = c.store.DeleteFlags(ctx, flag.RunID, []model.FlagID{id})
	return err
}

// DeleteFlagsBulk removes the given flags from a run, ignoring ids
// that do not belong to it. Returns the number deleted.
func (c *Controller) DeleteFlagsBulk(ctx context.Context, caller model.Actor, runID model.RunID, ids []model.FlagID) (int, error) {
	if _, err := c.ownedRun(ctx, caller, runID); err != nil {
		return 0, err
	}
	return c.store.DeleteFlags(ctx, runID, ids)
}
