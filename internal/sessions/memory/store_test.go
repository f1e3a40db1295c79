package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/aweston/flagchase/internal/dependencies/mocks"
	"github.com/aweston/flagchase/internal/model"
)

type StoreSuite struct {
	suite.Suite
	clock *mocks.MockClock
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.store = New(s.clock)
	s.ctx = context.Background()
}

func (s *StoreSuite) TestGuestRoundTrip() {
	profile := &model.GuestProfile{Token: "guest-1", DisplayName: "Wanderer"}
	s.Require().NoError(s.store.SaveGuest(s.ctx, profile))

	got, err := s.store.GetGuest(s.ctx, "guest-1")
	s.Require().NoError(err)
	s.Equal("Wanderer", got.DisplayName)

	_, err = s.store.GetGuest(s.ctx, "missing")
	s.ErrorIs(err, model.ErrGuestNotFound)
}

func (s *StoreSuite) TestGuestExpires() {
	s.Require().NoError(s.store.SaveGuest(s.ctx, &model.GuestProfile{Token: "guest-1"}))

	s.clock.Advance(24 * time.Hour)
	_, err := s.store.GetGuest(s.ctx, "guest-1")
	s.NoError(err)

	s.clock.Advance(time.Second)
	_, err = s.store.GetGuest(s.ctx, "guest-1")
	s.ErrorIs(err, model.ErrGuestNotFound)
}

func (s *StoreSuite) TestTicketsExpire() {
	s.Require().NoError(s.store.SaveVerification(s.ctx, &model.VerificationTicket{Email: "a@example.com"}))
	s.Require().NoError(s.store.SaveReset(s.ctx, &model.ResetTicket{Email: "a@example.com"}))

	s.clock.Advance(time.Hour + time.Second)

	_, err := s.store.GetVerification(s.ctx, "a@example.com")
	s.ErrorIs(err, model.ErrTicketInvalid)
	_, err = s.store.GetReset(s.ctx, "a@example.com")
	s.ErrorIs(err, model.ErrTicketInvalid)
}

func (s *StoreSuite) TestGetReturnsCopy() {
	s.Require().NoError(s.store.SaveGuest(s.ctx, &model.GuestProfile{Token: "guest-1", DisplayName: "Wanderer"}))

	got, err := s.store.GetGuest(s.ctx, "guest-1")
	s.Require().NoError(err)
	got.DisplayName = "Mutated"

	again, err := s.store.GetGuest(s.ctx, "guest-1")
	s.Require().NoError(err)
	s.Equal("Wanderer", again.DisplayName)

	s.Require().NoError(s.store.SaveVerification(s.ctx, &model.VerificationTicket{Email: "a@example.com", TokenHash: "hash"}))
	ticket, err := s.store.GetVerification(s.ctx, "a@example.com")
	s.Require().NoError(err)
	ticket.TokenHash = "tampered"

	ticket, err = s.store.GetVerification(s.ctx, "a@example.com")
	s.Require().NoError(err)
	s.Equal("hash", ticket.TokenHash)

	s.Require().NoError(s.store.SaveReset(s.ctx, &model.ResetTicket{Email: "a@example.com", TokenHash: "hash"}))
	reset, err := s.store.GetReset(s.ctx, "a@example.com")
	s.Require().NoError(err)
	reset.TokenHash = "tampered"

	reset, err = s.store.GetReset(s.ctx, "a@example.com")
	s.Require().NoError(err)
	s.Equal("hash", reset.TokenHash)
}

func (s *StoreSuite) TestDeleteIsIdempotent() {
	s.Require().NoError(s.store.SaveGuest(s.ctx, &model.GuestProfile{Token: "guest-1"}))
	s.Require().NoError(s.store.DeleteGuest(s.ctx, "guest-1"))
	s.Require().NoError(s.store.DeleteGuest(s.ctx, "guest-1"))

	s.NoError(s.store.DeleteVerification(s.ctx, "nobody@example.com"))
	s.NoError(s.store.DeleteReset(s.ctx, "nobody@example.com"))
}
