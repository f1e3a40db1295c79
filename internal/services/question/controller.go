package question

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
	ErrEmptyText   = errors.New("text must not be empty")
	ErrUnknownFlag = errors.New("flag does not belong to this run")
)

// Input is one question creation or update payload
type Input struct {
	ID     model.QuestionID
	FlagID *model.FlagID
	Text   string
	Type   string
}

// Validate checks a question payload
func (in Input) Validate() error {
	if in.Text == "" {
		return ErrEmptyText
	}
	return nil
}

// OptionInput is one option creation or update payload
type OptionInput struct {
	ID      model.OptionID
	Text    string
	Correct bool
}

// Validate checks an option payload
func (in OptionInput) Validate() error {
	if in.Text == "" {
		return ErrEmptyText
	}
	return nil
}

// Controller coordinates single and batched question and option
// mutations. Ownership is transitively the run owner's.
type Controller struct {
	store  storage.Store
	logger *slog.Logger
}

// NewController creates a new question controller
func NewController(store storage.Store, logger *slog.Logger) *Controller {
	return &Controller{
		store:  store,
		logger: logger,
	}
}

// ownedRun loads a run and verifies the caller owns it
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

// ownedQuestion loads a question and verifies the caller owns its run
func (c *Controller) ownedQuestion(ctx context.Context, caller model.Actor, id model.QuestionID) (*model.Question, error) {
	if err := actor.RequireUser(caller); err != nil {
		return nil, err
	}
	question, err := c.store.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := c.ownedRun(ctx, caller, question.RunID); err != nil {
		return nil, err
	}
	return question, nil
}

// flagBelongsToRun checks the optional flag reference of a question
func (c *Controller) flagBelongsToRun(ctx context.Context, run *model.Run, flagID *model.FlagID) error {
	if flagID == nil {
		return nil
	}
	flag, err := c.store.GetFlag(ctx, *flagID)
	if err != nil || flag.RunID != run.ID {
		return ErrUnknownFlag
	}
	return nil
}

// CreateQuestion creates a single question on a run
func (c *Controller) CreateQuestion(ctx context.Context, caller model.Actor, runID model.RunID, in Input) (*model.Question, error) {
	run, err := c.ownedRun(ctx, caller, runID)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := c.flagBelongsToRun(ctx, run, in.FlagID); err != nil {
		return nil, err
	}

	question := model.NewQuestion(runID, in.FlagID, in.Text, in.Type)
	if err := c.store.SaveQuestion(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

// CreateQuestionsBulk creates many questions; invalid items are
// skipped per the batch partial-success contract
func (c *Controller) CreateQuestionsBulk(ctx context.Context, caller model.Actor, runID model.RunID, items []Input) ([]*model.Question, error) {
	run, err := c.ownedRun(ctx, caller, runID)
	if err != nil {
		return nil, err
	}

	created := make([]*model.Question, 0, len(items))
	for _, in := range items {
		if in.Validate() != nil || c.flagBelongsToRun(ctx, run, in.FlagID) != nil {
			continue
		}
		question := model.NewQuestion(runID, in.FlagID, in.Text, in.Type)
		if err := c.store.SaveQuestion(ctx, question); err != nil {
			continue
		}
		created = append(created, question)
	}
	return created, nil
}

// GetQuestion retrieves a question with its options
func (c *Controller) GetQuestion(ctx context.Context, id model.QuestionID) (*model.Question, error) {
	return c.store.GetQuestion(ctx, id)
}

// UpdateQuestion updates a single question, owner only
func (c *Controller) UpdateQuestion(ctx context.Context, caller model.Actor, id model.QuestionID, in Input) (*model.Question, error) {
	question, err := c.ownedQuestion(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	question.FlagID = in.FlagID
	question.Text = in.Text
	if in.Type != "" {
		question.Type = in.Type
	}
	if err := c.store.UpdateQuestion(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

// UpdateQuestionsBulk updates questions item by item, skipping
// invalid items and questions outside the run
func (c *Controller) UpdateQuestionsBulk(ctx context.Context, caller model.Actor, runID model.RunID, items []Input) ([]*model.Question, error) {
	run, err := c.ownedRun(ctx, caller, runID)
	if err != nil {
		return nil, err
	}

	updated := make([]*model.Question, 0, len(items))
	for _, in := range items {
		if in.ID == "" || in.Validate() != nil {
			continue
		}
		question, err := c.store.GetQuestion(ctx, in.ID)
		if err != nil || question.RunID != runID {
			continue
		}
		if c.flagBelongsToRun(ctx, run, in.FlagID) != nil {
			continue
		}
		question.FlagID = in.FlagID
		question.Text = in.Text
		if in.Type != "" {
			question.Type = in.Type
		}
		if err := c.store.UpdateQuestion(ctx, question); err != nil {
			continue
		}
		updated = append(updated, question)
	}
	return updated, nil
}

// DeleteQuestionsBulk removes the given questions from a run,
// ignoring ids that do not belong to it
func (c *Controller) DeleteQuestionsBulk(ctx context.Context, caller model.Actor, runID model.RunID, ids []model.QuestionID) (int, error) {
	if _, err := c.ownedRun(ctx, caller, runID); err != nil {
		return 0, err
	}
	return c.store.DeleteQuestions(ctx, runID, ids)
}

// CreateOption creates a single option on a question
func (c *Controller) CreateOption(ctx context.Context, caller model.Actor, questionID model.QuestionID, in OptionInput) (*model.QuestionOption, error) {
	if _, err := c.ownedQuestion(ctx, caller, questionID); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	option := model.NewQuestionOption(questionID, in.Text, in.Correct)
	if err := c.store.SaveOption(ctx, option); err != nil {
		return nil, err
	}
	return option, nil
}

// CreateOptionsBulk creates many options; invalid items are skipped
func (c *Controller) CreateOptionsBulk(ctx context.Context, caller model.Actor, questionID model.QuestionID, items []OptionInput) ([]*model.QuestionOption, error) {
	if _, err := c.ownedQuestion(ctx, caller, questionID); err != nil {
		return nil, err
	}

	created := make([]*model.QuestionOption, 0, len(items))
	for _, in := range items {
		if in.Validate() != nil {
			continue
		}
		option := model.NewQuestionOption(questionID, in.Text, in.Correct)
		if err := c.store.SaveOption(ctx, option); err != nil {
			continue
		}
		created = append(created, option)
	}
	return created, nil
}

// UpdateOptionsBulk updates options item by item, skipping invalid
// items and options outside the question
func (c *Controller) UpdateOptionsBulk(ctx context.Context, caller model.Actor, questionID model.QuestionID, items []OptionInput) ([]*model.QuestionOption, error) {
	if _, err := c.ownedQuestion(ctx, caller, questionID); err != nil {
		return nil, err
	}

	updated := make([]*model.QuestionOption, 0, len(items))
	for _, in := range items {
		if in.ID == "" || in.Validate() != nil {
			continue
		}
		option, err := c.store.GetOption(ctx, in.ID)
		if err != nil || option.QuestionID != questionID {
			continue
		}
		option.Text = in.Text
		option.Correct = in.Correct
		if err := c.store.UpdateOption(ctx, option); err != nil {
			continue
		}
		updated = append(updated, option)
	}
	return updated, nil
}

// UpdateOption updates a single option, owner only
func (c *Controller) UpdateOption(ctx context.Context, caller model.Actor, id model.OptionID, in OptionInput) (*model.QuestionOption, error) {
	if err := actor.RequireUser(caller); err != nil {
		return nil, err
	}
	option, err := c.store.GetOption(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := c.ownedQuestion(ctx, caller, option.QuestionID); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	option.Text = in.Text
	option.Correct = in.Correct
	if err := c.store.UpdateOption(ctx, option); err != nil {
		return nil, err
	}
	return option, nil
}

// DeleteOptionsBulk removes the given options from a question,
// ignoring ids that do not belong to it
func (c *Controller) DeleteOptionsBulk(ctx context.Context, caller model.Actor, questionID model.QuestionID, ids []model.OptionID) (int, error) {
	if _, err := c.ownedQuestion(ctx, caller, questionID); err != nil {
		return 0, err
	}
	return c.store.DeleteOptions(ctx, questionID, ids)
}
