package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/aweston/flagchase/internal/model"
)

func (s *Storage) CreateRun(ctx context.Context, run *model.Run) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(run).Exec(ctx); err != nil {
			return err
		}

		// The counter row is the lock target for flag allocation; it
		// must exist from the moment the run does.
		counter := &model.RunCounter{RunID: run.ID, LastFlagNumber: 0}
		_, err := tx.NewInsert().Model(counter).Exec(ctx)
		return err
	})
	if isUniqueViolation(err) {
		return model.ErrPinTaken
	}
	return err
}

func (s *Storage) GetRun(ctx context.Context, id model.RunID) (*model.Run, error) {
	run := new(model.Run)
	err := s.db.NewSelect().
		Model(run).
		Relation("Flags", sortFlags).
		Relation("Questions").
		Relation("Questions.Options").
		Where("r.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

func (s *Storage) GetRunByPin(ctx context.Context, pin string) (*model.Run, error) {
	run := new(model.Run)
	err := s.db.NewSelect().
		Model(run).
		Relation("Flags", sortFlags).
		Relation("Questions").
		Relation("Questions.Options").
		Where("r.pin = ?", pin).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

func (s *Storage) UpdateRun(ctx context.Context, run *model.Run) error {
	res, err := s.db.NewUpdate().
		Model(run).
		Column("type", "title", "pin", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrPinTaken
		}
		return err
	}
	return requireAffected(res, model.ErrRunNotFound)
}

func (s *Storage) DeleteRun(ctx context.Context, id model.RunID) error {
	// Flags, questions, options, counters and histories cascade
	res, err := s.db.NewDelete().
		Model((*model.Run)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, model.ErrRunNotFound)
}

func (s *Storage) AssignPin(ctx context.Context, id model.RunID, pin string) error {
	res, err := s.db.NewUpdate().
		Model((*model.Run)(nil)).
		Set("pin = ?", pin).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrPinTaken
		}
		return err
	}
	return requireAffected(res, model.ErrRunNotFound)
}

// sortFlags orders a run's flags by their assigned number
func sortFlags(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("flag_number ASC")
}

// requireAffected returns notFound when the statement touched no rows
func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
