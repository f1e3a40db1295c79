package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/aweston/flagchase/internal/model"
)

func (s *Storage) StartHistory(ctx context.Context, history *model.History) (*model.History, error) {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*model.Run)(nil)).
			Where("id = ?", history.RunID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return model.ErrRunNotFound
		}

		// Lock any active attempt for the pair. When no such row
		// exists two concurrent starts can both pass this check; the
		// partial unique index on (actor_id, run_id) WHERE ended_at
		// IS NULL rejects the second insert below.
		var active []*model.History
		err = tx.NewSelect().
			Model(&active).
			Where("actor_id = ? AND run_id = ? AND ended_at IS NULL", history.ActorID, history.RunID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return model.ErrHistoryActive
		}

		if _, err := tx.NewInsert().Model(history).Exec(ctx); err != nil {
			return err
		}

		// One snapshot per flag that exists on the run right now;
		// flags added later never appear in this history
		flags := make([]*model.Flag, 0)
		err = tx.NewSelect().
			Model(&flags).
			Where("f.run_id = ?", history.RunID).
			Order("flag_number ASC").
			Scan(ctx)
		if err != nil {
			return err
		}

		if len(flags) > 0 {
			snapshots := make([]*model.HistoryFlag, len(flags))
			for i, flag := range flags {
				snapshots[i] = model.NewHistoryFlag(history.ID, flag)
			}
			if _, err := tx.NewInsert().Model(&snapshots).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrHistoryActive
		}
		return nil, err
	}
	return s.GetHistory(ctx, history.ID)
}

func (s *Storage) EndHistory(ctx context.Context, id model.HistoryID, endedAt time.Time) (*model.History, error) {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		history := new(model.History)
		err := tx.NewSelect().
			Model(history).
			Where("h.id = ?", id).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.ErrHistoryNotFound
			}
			return err
		}
		if history.EndedAt != nil {
			return model.ErrHistoryEnded
		}

		_, err = tx.NewUpdate().
			Model((*model.History)(nil)).
			Set("ended_at = ?", endedAt).
			Set("updated_at = ?", endedAt).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetHistory(ctx, id)
}

func (s *Storage) MarkHistoryFlag(ctx context.Context, historyID model.HistoryID, flagID model.FlagID, reachedAt time.Time, points int, distance *float64) (*model.HistoryFlag, error) {
	snapshot := new(model.HistoryFlag)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(snapshot).
			Where("hf.history_id = ? AND hf.flag_id = ?", historyID, flagID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				exists, existsErr := tx.NewSelect().
					Model((*model.History)(nil)).
					Where("id = ?", historyID).
					Exists(ctx)
				if existsErr != nil {
					return existsErr
				}
				if !exists {
					return model.ErrHistoryNotFound
				}
				return model.ErrHistoryFlagNotFound
			}
			return err
		}

		// Reach timestamp is monotonic: set once, never rewound.
		// Points and distance are overwritten on every call.
		if snapshot.ReachedAt == nil {
			t := reachedAt
			snapshot.ReachedAt = &t
		}
		p := points
		snapshot.Points = &p
		snapshot.Distance = distance

		_, err = tx.NewUpdate().
			Model(snapshot).
			Column("reached_at", "points", "distance").
			WherePK().
			Exec(ctx)
		if err != nil {
			return err
		}

		_, err = tx.NewUpdate().
			Model((*model.History)(nil)).
			Set("updated_at = ?", reachedAt).
			Where("id = ?", historyID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *Storage) GetHistory(ctx context.Context, id model.HistoryID) (*model.History, error) {
	history := new(model.History)
	err := s.db.NewSelect().
		Model(history).
		Relation("Run").
		Relation("Flags").
		Where("h.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrHistoryNotFound
		}
		return nil, err
	}
	return history, nil
}

func (s *Storage) ListHistories(ctx context.Context, actorID string) ([]*model.History, error) {
	histories := make([]*model.History, 0)
	err := s.db.NewSelect().
		Model(&histories).
		Relation("Run").
		Relation("Flags").
		Where("h.actor_id = ?", actorID).
		Order("started_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return histories, nil
}

func (s *Storage) DeleteHistory(ctx context.Context, id model.HistoryID) error {
	res, err := s.db.NewDelete().
		Model((*model.History)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, model.ErrHistoryNotFound)
}
