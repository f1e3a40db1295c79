package flag

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
}

func coords(lat, lng float64) Input {
	return Input{Latitude: &lat, Longitude: &lng}
}

func (s *ControllerSuite) TestCreateFlag() {
	flag, err := s.controller.CreateFlag(s.ctx, s.owner, s.run.ID, coords(51.5, -0.12))
	s.Require().NoError(err)
	s.Equal(1, flag.FlagNumber)
	s.Equal(51.5, flag.Latitude)

	next, err := s.controller.CreateFlag(s.ctx, s.owner, s.run.ID, coords(48.85, 2.35))
	s.Require().NoError(err)
	s.Equal(2, next.FlagNumber)
}

func (s *ControllerSuite) TestCreateFlagValidation() {
	tests := []struct {
		name string
		in   Input
	}{
		{"missing latitude", Input{Longitude: ptr(1.0)}},
		{"missing longitude", Input{Latitude: ptr(1.0)}},
		{"latitude out of range", coords(91, 0)},
		{"longitude out of range", coords(0, -181)},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.controller.CreateFlag(s.ctx, s.owner, s.run.ID, tt.in)
			s.ErrorIs(err, ErrInvalidCoordinates)
		})
	}
}

func (s *ControllerSuite) TestCreateFlagOwnership() {
	_, err := s.controller.CreateFlag(s.ctx, model.NewUserActor("user-2"), s.run.ID, coords(1, 1))
	s.ErrorIs(err, model.ErrNotOwner)

	_, err = s.controller.CreateFlag(s.ctx, model.NewGuestActor("guest-token"), s.run.ID, coords(1, 1))
	s.ErrorIs(err, model.ErrGuestNotAllowed)

	_, err = s.controller.CreateFlag(s.ctx, s.owner, "missing", coords(1, 1))
	s.ErrorIs(err, model.ErrRunNotFound)
}

func (s *ControllerSuite) TestBulkCreateSkipsInvalidItems() {
	items := []Input{
		coords(1, 1),
		{Latitude: ptr(200.0), Longitude: ptr(0.0)},
		coords(2, 2),
	}
	flags, err := s.controller.CreateFlagsBulk(s.ctx, s.owner, s.run.ID, items)
	s.Require().NoError(err)

	// The invalid item is skipped and the number block covers the
	// valid items in input order
	s.Require().Len(flags, 2)
	s.Equal(1, flags[0].FlagNumber)
	s.Equal(1.0, flags[0].Latitude)
	s.Equal(2, flags[1].FlagNumber)
	s.Equal(2.0, flags[1].Latitude)
}

func (s *ControllerSuite) TestBulkCreateAllInvalid() {
	flags, err := s.controller.CreateFlagsBulk(s.ctx, s.owner, s.run.ID, []Input{{}, {}})
	s.Require().NoError(err)
	s.Empty(flags)

	// No numbers were consumed
	next, err := s.controller.CreateFlag(s.ctx, s.owner, s.run.ID, coords(1, 1))
	s.Require().NoError(err)
	s.Equal(1, next.FlagNumber)
}

func (s *ControllerSuite) TestUpdateFlagKeepsNumber() {
	flag, err := s.controller.CreateFlag(s.ctx, s.owner, s.run.ID, coords(1, 1))
	s.Require().NoError(err)

	moved, err := s.controller.UpdateFlag(s.ctx, s.owner, flag.ID, coords(5, 6))
	s.Require().NoError(err)
	s.Equal(1, moved.FlagNumber)
	s.Equal(5.0, moved.Latitude)
	s.Equal(6.0, moved.Longitude)
}

func (s *ControllerSuite) TestBulkUpdateSkipsForeignFlags() {
	mine, err := s.controller.CreateFlag(s.ctx, s.owner, s.run.ID, coords(1, 1))
	s.Require().NoError(err)

	otherRun := model.NewRun("user-1", "scavenger", "Other", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.Require().NoError(s.storage.CreateRun(s.ctx, otherRun))
	foreign, err := s.controller.CreateFlag(s.ctx, s.owner, otherRun.ID, coords(2, 2))
	s.Require().NoError(err)

	items := []Input{
		{ID: mine.ID, Latitude: ptr(9.0), Longitude: ptr(9.0)},
		{ID: foreign.ID, Latitude: ptr(9.0), Longitude: ptr(9.0)},
		{ID: "missing", Latitude: ptr(9.0), Longitude: ptr(9.0)},
		{ID: mine.ID},
	}
	updated, err := s.controller.UpdateFlagsBulk(s.ctx, s.owner, s.run.ID, items)
	s.Require().NoError(err)
	s.Require().Len(updated, 1)
	s.Equal(mine.ID, updated[0].ID)

	// The flag in the other run is untouched
	got, err := s.controller.GetFlag(s.ctx, foreign.ID)
	s.Require().NoError(err)
	s.Equal(2.0, got.Latitude)
}

func (s *ControllerSuite) TestBulkDelete() {
	first, err := s.controller.CreateFlag(s.ctx, s.owner, s.run.ID, coords(1, 1))
	s.Require().NoError(err)
	second, err := s.controller.CreateFlag(s.ctx, s.owner, s.run.ID, coords(2, 2))
	s.Require().NoError(err)

	deleted, err := s.controller.DeleteFlagsBulk(s.ctx, s.owner, s.run.ID, []model.FlagID{first.ID, "missing"})
	s.Require().NoError(err)
	s.Equal(1, deleted)

	_, err = s.controller.GetFlag(s.ctx, first.ID)
	s.ErrorIs(err, model.ErrFlagNotFound)
	_, err = s.controller.GetFlag(s.ctx, second.ID)
	s.NoError(err)
}

func (s *ControllerSuite) TestDeleteFlagOwnership() {
	flag, err := s.controller.CreateFlag(s.ctx, s.owner, s.run.ID, coords(1, 1))
	s.Require().NoError(err)

	err = s.controller.DeleteFlag(s.ctx, model.NewUserActor("user-2"), flag.ID)
	s.ErrorIs(err, model.ErrNotOwner)

	s.NoError(s.controller.DeleteFlag(s.ctx, s.owner, flag.ID))
}

func ptr[T any](v T) *T {
	return &v
}
