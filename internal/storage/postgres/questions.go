package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/aweston/flagchase/internal/model"
)

func (s *Storage) SaveQuestion(ctx context.Context, question *model.Question) error {
	_, err := s.db.NewInsert().Model(question).Exec(ctx)
	return err
}

func (s *Storage) GetQuestion(ctx context.Context, id model.QuestionID) (*model.Question, error) {
	question := new(model.Question)
	err := s.db.NewSelect().
		Model(question).
		Relation("Options").
		Where("q.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrQuestionNotFound
		}
		return nil, err
	}
	return question, nil
}

func (s *Storage) ListQuestions(ctx context.Context, runID model.RunID) ([]*model.Question, error) {
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

	questions := make([]*model.Question, 0)
	err = s.db.NewSelect().
		Model(&questions).
		Relation("Options").
		Where("q.run_id = ?", runID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *Storage) UpdateQuestion(ctx context.Context, question *model.Question) error {
	res, err := s.db.NewUpdate().
		Model(question).
		Column("flag_id", "text", "question_type").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, model.ErrQuestionNotFound)
}

func (s *Storage) DeleteQuestions(ctx context.Context, runID model.RunID, ids []model.QuestionID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.NewDelete().
		Model((*model.Question)(nil)).
		Where("run_id = ?", runID).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Storage) SaveOption(ctx context.Context, option *model.QuestionOption) error {
	_, err := s.db.NewInsert().Model(option).Exec(ctx)
	return err
}

func (s *Storage) GetOption(ctx context.Context, id model.OptionID) (*model.QuestionOption, error) {
	option := new(model.QuestionOption)
	err := s.db.NewSelect().
		Model(option).
		Where("qo.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrOptionNotFound
		}
		return nil, err
	}
	return option, nil
}

func (s *Storage) UpdateOption(ctx context.Context, option *model.QuestionOption) error {
	res, err := s.db.NewUpdate().
		Model(option).
		Column("text", "correct").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, model.ErrOptionNotFound)
}

func (s *Storage) DeleteOptions(ctx context.Context, questionID model.QuestionID, ids []model.OptionID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.NewDelete().
		Model((*model.QuestionOption)(nil)).
		Where("question_id = ?", questionID).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
