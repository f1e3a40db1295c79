package question

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/storage/memory"
	"github.com/aweston/flagchase/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	controller *Controller
	ctx        context.Context
	owner      model.Actor
	run        *model.Run
	flag       *model.Flag
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.controller = NewController(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
	s.owner = model.NewUserActor("user-1")

	s.run = model.NewRun("user-1", "scavenger", "Test Run", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.Require().NoError(s.storage.CreateRun(s.ctx, s.run))

	s.flag = model.NewFlag(s.run.ID, 1, 1)
	s.Require().NoError(s.storage.CreateFlags(s.ctx, s.run.ID, []*model.Flag{s.flag}))
}

func (s *ControllerSuite) TestCreateQuestion() {
	question, err := s.controller.CreateQuestion(s.ctx, s.owner, s.run.ID, Input{
		FlagID: &s.flag.ID,
		Text:   "What colour is the door?",
		Type:   "multiple_choice",
	})
	s.Require().NoError(err)
	s.Equal(s.run.ID, question.RunID)
	s.Require().NotNil(question.FlagID)
	s.Equal(s.flag.ID, *question.FlagID)
}

func (s *ControllerSuite) TestCreateQuestionWithoutFlag() {
	question, err := s.controller.CreateQuestion(s.ctx, s.owner, s.run.ID, Input{
		Text: "General knowledge?",
		Type: "free_text",
	})
	s.Require().NoError(err)
	s.Nil(question.FlagID)
}

func (s *ControllerSuite) TestCreateQuestionEmptyText() {
	_, err := s.controller.CreateQuestion(s.ctx, s.owner, s.run.ID, Input{Type: "free_text"})
	s.ErrorIs(err, ErrEmptyText)
}

func (s *ControllerSuite) TestCreateQuestionFlagOutsideRun() {
	otherRun := model.NewRun("user-1", "scavenger", "Other", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.Require().NoError(s.storage.CreateRun(s.ctx, otherRun))
	otherFlag := model.NewFlag(otherRun.ID, 2, 2)
	s.Require().NoError(s.storage.CreateFlags(s.ctx, otherRun.ID, []*model.Flag{otherFlag}))

	_, err := s.controller.CreateQuestion(s.ctx, s.owner, s.run.ID, Input{
		FlagID: &otherFlag.ID,
		Text:   "Wrong run",
	})
	s.ErrorIs(err, ErrUnknownFlag)

	missing := model.FlagID("missing")
	_, err = s.controller.CreateQuestion(s.ctx, s.owner, s.run.ID, Input{
		FlagID: &missing,
		Text:   "No such flag",
	})
	s.ErrorIs(err, ErrUnknownFlag)
}

func (s *ControllerSuite) TestCreateQuestionOwnership() {
	_, err := s.controller.CreateQuestion(s.ctx, model.NewUserActor("user-2"), s.run.ID, Input{Text: "Hi"})
	s.ErrorIs(err, model.ErrNotOwner)

	_, err = s.controller.CreateQuestion(s.ctx, model.NewGuestActor("guest-token"), s.run.ID, Input{Text: "Hi"})
	s.ErrorIs(err, model.ErrGuestNotAllowed)
}

func (s *ControllerSuite) TestBulkCreateSkipsInvalidItems() {
	otherFlag := model.FlagID("missing")
	items := []Input{
		{Text: "First", Type: "free_text"},
		{Text: ""},
		{Text: "Bad flag", FlagID: &otherFlag},
		{Text: "Second", FlagID: &s.flag.ID},
	}
	created, err := s.controller.CreateQuestionsBulk(s.ctx, s.owner, s.run.ID, items)
	s.Require().NoError(err)
	s.Require().Len(created, 2)
	s.Equal("First", created[0].Text)
	s.Equal("Second", created[1].Text)
}

func (s *ControllerSuite) TestUpdateQuestion() {
	question, err := s.controller.CreateQuestion(s.ctx, s.owner, s.run.ID, Input{Text: "Old", Type: "free_text"})
	s.Require().NoError(err)

	updated, err := s.controller.UpdateQuestion(s.ctx, s.owner, question.ID, Input{
		Text:   "New",
		FlagID: &s.flag.ID,
	})
	s.Require().NoError(err)
	s.Equal("New", updated.Text)
	s.Equal("free_text", updated.Type)
	s.Require().NotNil(updated.FlagID)
}

func (s *ControllerSuite) TestBulkUpdateSkipsForeignQuestions() {
	mine, err := s.controller.CreateQuestion(s.ctx, s.owner, s.run.ID, Input{Text: "Mine"})
	s.Require().NoError(err)

	otherRun := model.NewRun("user-1", "scavenger", "Other", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.Require().NoError(s.storage.CreateRun(s.ctx, otherRun))
	foreign, err := s.controller.CreateQuestion(s.ctx, s.owner, otherRun.ID, Input{Text: "Foreign"})
	s.Require().NoError(err)

	items := []Input{
		{ID: mine.ID, Text: "Updated"},
		{ID: foreign.ID, Text: "Hijacked"},
		{ID: "missing", Text: "Nope"},
		{ID: mine.ID, Text: ""},
	}
	updated, err := s.controller.UpdateQuestionsBulk(s.ctx, s.owner, s.run.ID, items)
	s.Require().NoError(err)
	s.Require().Len(updated, 1)
	s.Equal("Updated", updated[0].Text)

	got, err := s.controller.GetQuestion(s.ctx, foreign.ID)
	s.Require().NoError(err)
	s.Equal("Foreign", got.Text)
}

func (s *ControllerSuite) TestBulkDeleteQuestions() {
	first, err := s.controller.CreateQuestion(s.ctx, s.owner, s.run.ID, Input{Text: "First"})
	s.Require().NoError(err)
	second, err := s.controller.CreateQuestion(s.ctx, s.owner, s.run.ID, Input{Text: "Second"})
	s.Require().NoError(err)

	deleted, err := s.controller.DeleteQuestionsBulk(s.ctx, s.owner, s.run.ID, []model.QuestionID{first.ID, "missing"})
	s.Require().NoError(err)
	s.Equal(1, deleted)

	_, err = s.controller.GetQuestion(s.ctx, first.ID)
	s.ErrorIs(err, model.ErrQuestionNotFound)
	_, err = s.controller.GetQuestion(s.ctx, second.ID)
	s.NoError(err)
}

func (s *ControllerSuite) TestOptions() {
	question, err := s.controller.CreateQuestion(s.ctx, s.owner, s.run.ID, Input{Text: "Colour?", Type: "multiple_choice"})
	s.Require().NoError(err)

	option, err := s.controller.CreateOption(s.ctx, s.owner, question.ID, OptionInput{Text: "Blue", Correct: true})
	s.Require().NoError(err)

	_, err = s.controller.CreateOption(s.ctx, s.owner, question.ID, OptionInput{})
	s.ErrorIs(err, ErrEmptyText)

	updated, err := s.controller.UpdateOption(s.ctx, s.owner, option.ID, OptionInput{Text: "Red", Correct: false})
	s.Require().NoError(err)
	s.Equal("Red", updated.Text)
	s.False(updated.Correct)

	got, err := s.controller.GetQuestion(s.ctx, question.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Options, 1)
	s.Equal("Red", got.Options[0].Text)
}

func (s *ControllerSuite) TestBulkOptions() {
	question, err := s.controller.CreateQuestion(s.ctx, s.owner, s.run.ID, Input{Text: "Colour?", Type: "multiple_choice"})
	s.Require().NoError(err)

	created, err := s.controller.CreateOptionsBulk(s.ctx, s.owner, question.ID, []OptionInput{
		{Text: "Blue", Correct: true},
		{},
		{Text: "Red"},
	})
	s.Require().NoError(err)
	s.Require().Len(created, 2)

	deleted, err := s.controller.DeleteOptionsBulk(s.ctx, s.owner, question.ID, []model.OptionID{created[0].ID})
	s.Require().NoError(err)
	s.Equal(1, deleted)
}

func (s *ControllerSuite) TestBulkUpdateOptionsSkipsForeignOptions() {
	question, err := s.controller.CreateQuestion(s.ctx, s.owner, s.run.ID, Input{Text: "Colour?", Type: "multiple_choice"})
	s.Require().NoError(err)
	mine, err := s.controller.CreateOption(s.ctx, s.owner, question.ID, OptionInput{Text: "Blue", Correct: true})
	s.Require().NoError(err)

	other, err := s.controller.CreateQuestion(s.ctx, s.owner, s.run.ID, Input{Text: "Shape?", Type: "multiple_choice"})
	s.Require().NoError(err)
	foreign, err := s.controller.CreateOption(s.ctx, s.owner, other.ID, OptionInput{Text: "Square"})
	s.Require().NoError(err)

	items := []OptionInput{
		{ID: mine.ID, Text: "Red", Correct: false},
		{ID: foreign.ID, Text: "Circle"},
		{ID: "missing", Text: "Nope"},
		{ID: mine.ID},
	}
	updated, err := s.controller.UpdateOptionsBulk(s.ctx, s.owner, question.ID, items)
	s.Require().NoError(err)
	s.Require().Len(updated, 1)
	s.Equal("Red", updated[0].Text)
	s.False(updated[0].Correct)

	// The option on the other question is untouched
	got, err := s.controller.GetQuestion(s.ctx, other.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Options, 1)
	s.Equal("Square", got.Options[0].Text)
}

func (s *ControllerSuite) TestBulkUpdateOptionsOwnership() {
	question, err := s.controller.CreateQuestion(s.ctx, s.owner, s.run.ID, Input{Text: "Colour?"})
	s.Require().NoError(err)

	_, err = s.controller.UpdateOptionsBulk(s.ctx, model.NewUserActor("user-2"), question.ID, nil)
	s.ErrorIs(err, model.ErrNotOwner)

	_, err = s.controller.UpdateOptionsBulk(s.ctx, model.NewGuestActor("guest-token"), question.ID, nil)
	s.ErrorIs(err, model.ErrGuestNotAllowed)
}

func (s *ControllerSuite) TestOptionOwnership() {
	question, err := s.controller.CreateQuestion(s.ctx, s.owner, s.run.ID, Input{Text: "Colour?"})
	s.Require().NoError(err)

	_, err = s.controller.CreateOption(s.ctx, model.NewUserActor("user-2"), question.ID, OptionInput{Text: "Blue"})
	s.ErrorIs(err, model.ErrNotOwner)
}
