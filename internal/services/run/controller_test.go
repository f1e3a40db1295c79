package run

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/aweston/flagchase/internal/dependencies/mocks"
	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/storage/memory"
	"github.com/aweston/flagchase/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
	owner      model.Actor
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.controller = NewController(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
	s.owner = model.NewUserActor("user-1")
}

func (s *ControllerSuite) TestCreateRunAssignsPin() {
	s.random.QueueString("ABC123")

	run, err := s.controller.CreateRun(s.ctx, s.owner, "scavenger", "My Hunt", nil)
	s.Require().NoError(err)
	s.Require().NotNil(run.Pin)
	s.Equal("ABC123", *run.Pin)
	s.Equal(model.UserID("user-1"), run.OwnerID)

	got, err := s.controller.GetRunByPin(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(run.ID, got.ID)
}

func (s *ControllerSuite) TestCreateRunKeepsExplicitPin() {
	pin := "MINE01"
	run, err := s.controller.CreateRun(s.ctx, s.owner, "scavenger", "My Hunt", &pin)
	s.Require().NoError(err)
	s.Equal("MINE01", *run.Pin)

	// No random pin was drawn
	s.Empty(s.random.StringResults)
}

func (s *ControllerSuite) TestCreateRunRetriesOnPinCollision() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRun(s.ctx, s.owner, "scavenger", "First", nil)
	s.Require().NoError(err)

	// Two collisions with the existing pin, then a fresh one
	s.random.QueueString("ABC123", "ABC123", "XYZ789")
	run, err := s.controller.CreateRun(s.ctx, s.owner, "scavenger", "Second", nil)
	s.Require().NoError(err)
	s.Equal("XYZ789", *run.Pin)
}

func (s *ControllerSuite) TestCreateRunPinExhausted() {
	s.random.QueueString("ABC123")
	_, err := s.controller.CreateRun(s.ctx, s.owner, "scavenger", "First", nil)
	s.Require().NoError(err)

	for i := 0; i < MaxPinAttempts; i++ {
		s.random.QueueString("ABC123")
	}
	_, err = s.controller.CreateRun(s.ctx, s.owner, "scavenger", "Second", nil)
	s.ErrorIs(err, model.ErrPinExhausted)
}

func (s *ControllerSuite) TestCreateRunRejectsGuests() {
	guest := model.NewGuestActor("guest-token")
	_, err := s.controller.CreateRun(s.ctx, guest, "scavenger", "Nope", nil)
	s.ErrorIs(err, model.ErrGuestNotAllowed)
}

func (s *ControllerSuite) TestUpdateRun() {
	s.random.QueueString("ABC123")
	run, err := s.controller.CreateRun(s.ctx, s.owner, "scavenger", "Old Title", nil)
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	updated, err := s.controller.UpdateRun(s.ctx, s.owner, run.ID, "", "New Title")
	s.Require().NoError(err)
	s.Equal("New Title", updated.Title)
	s.Equal("scavenger", updated.Type)
	s.True(updated.UpdatedAt.After(run.CreatedAt))
}

func (s *ControllerSuite) TestUpdateRunOwnerOnly() {
	s.random.QueueString("ABC123")
	run, err := s.controller.CreateRun(s.ctx, s.owner, "scavenger", "Mine", nil)
	s.Require().NoError(err)

	other := model.NewUserActor("user-2")
	_, err = s.controller.UpdateRun(s.ctx, other, run.ID, "", "Stolen")
	s.ErrorIs(err, model.ErrNotOwner)

	guest := model.NewGuestActor("guest-token")
	_, err = s.controller.UpdateRun(s.ctx, guest, run.ID, "", "Stolen")
	s.ErrorIs(err, model.ErrGuestNotAllowed)
}

func (s *ControllerSuite) TestDeleteRun() {
	s.random.QueueString("ABC123")
	run, err := s.controller.CreateRun(s.ctx, s.owner, "scavenger", "Mine", nil)
	s.Require().NoError(err)

	other := model.NewUserActor("user-2")
	s.ErrorIs(s.controller.DeleteRun(s.ctx, other, run.ID), model.ErrNotOwner)

	s.Require().NoError(s.controller.DeleteRun(s.ctx, s.owner, run.ID))
	_, err = s.controller.GetRun(s.ctx, run.ID)
	s.ErrorIs(err, model.ErrRunNotFound)
}

func (s *ControllerSuite) TestGetRunNotFound() {
	_, err := s.controller.GetRun(s.ctx, "missing")
	s.ErrorIs(err, model.ErrRunNotFound)

	_, err = s.controller.GetRunByPin(s.ctx, "NOPE00")
	s.ErrorIs(err, model.ErrRunNotFound)
}
