package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/aweston/flagchase/internal/model"
)

func (s *Storage) CreateFlags(ctx context.Context, runID model.RunID, flags []*model.Flag) error {
	if len(flags) == 0 {
		return nil
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// Lock the run's counter row. Concurrent allocators for the
		// same run serialize here, including when the run has no
		// flags yet; allocators for different runs never contend.
		counter := new(model.RunCounter)
		err := tx.NewSelect().
			Model(counter).
			Where("run_id = ?", runID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.ErrRunNotFound
			}
			return err
		}

		next := counter.LastFlagNumber + 1
		for i, flag := range flags {
			flag.RunID = runID
			flag.FlagNumber = next + i
		}

		if _, err := tx.NewInsert().Model(&flags).Exec(ctx); err != nil {
			return err
		}

		_, err = tx.NewUpdate().
			Model((*model.RunCounter)(nil)).
			Set("last_flag_number = ?", counter.LastFlagNumber+len(flags)).
			Where("run_id = ?", runID).
			Exec(ctx)
		return err
	})
}

func (s *Storage) GetFlag(ctx context.Context, id model.FlagID) (*model.Flag, error) {
	flag := new(model.Flag)
	err := s.db.NewSelect().
		Model(flag).
		Where("f.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrFlagNotFound
		}
		return nil, err
	}
	return flag, nil
}

func (s *Storage) ListFlags(ctx context.Context, runID model.RunID) ([]*model.Flag, error) {
	exists, err := s.db.NewSelect().
		Model((*model.Run)(nil)).
		Where("id = ?", runID).
		Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrRunNotFound
	}

	flags := make([]*model.Flag, 0)
	err = s.db.NewSelect().
		Model(&flags).
		Where("f.run_id = ?", runID).
		Order("flag_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return flags, nil
}

func (s *Storage) UpdateFlag(ctx context.Context, flag *model.Flag) error {
	// Only position is mutable; the assigned number never changes
	res, err := s.db.NewUpdate().
		Model(flag).
		Column("latitude", "longitude").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, model.ErrFlagNotFound)
}

func (s *Storage) DeleteFlags(ctx context.Context, runID model.RunID, ids []model.FlagID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.NewDelete().
		Model((*model.Flag)(nil)).
		Where("run_id = ?", runID).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
