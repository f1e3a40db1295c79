package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/aweston/flagchase/internal/model"
)

type StoreSuite struct {
	suite.Suite
	mr    *miniredis.Miniredis
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cfg := DefaultConfig()
	s.store = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	s.store.Close()
	s.mr.Close()
}

func (s *StoreSuite) TestGuestRoundTrip() {
	profile := &model.GuestProfile{
		Token:       "guest-token-1",
		DisplayName: "Wanderer",
		CreatedAt:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.store.SaveGuest(s.ctx, profile))

	got, err := s.store.GetGuest(s.ctx, "guest-token-1")
	s.Require().NoError(err)
	s.Equal("Wanderer", got.DisplayName)
	s.True(got.CreatedAt.Equal(profile.CreatedAt))
}

func (s *StoreSuite) TestGuestNotFound() {
	_, err := s.store.GetGuest(s.ctx, "missing")
	s.ErrorIs(err, model.ErrGuestNotFound)
}

func (s *StoreSuite) TestGuestExpires() {
	profile := &model.GuestProfile{Token: "guest-token-1"}
	s.Require().NoError(s.store.SaveGuest(s.ctx, profile))

	s.mr.FastForward(24*time.Hour + time.Second)

	_, err := s.store.GetGuest(s.ctx, "guest-token-1")
	s.ErrorIs(err, model.ErrGuestNotFound)
}

func (s *StoreSuite) TestDeleteGuest() {
	profile := &model.GuestProfile{Token: "guest-token-1"}
	s.Require().NoError(s.store.SaveGuest(s.ctx, profile))
	s.Require().NoError(s.store.DeleteGuest(s.ctx, "guest-token-1"))

	_, err := s.store.GetGuest(s.ctx, "guest-token-1")
	s.ErrorIs(err, model.ErrGuestNotFound)

	// Deleting an absent session is not an error
	s.NoError(s.store.DeleteGuest(s.ctx, "guest-token-1"))
}

func (s *StoreSuite) TestVerificationRoundTrip() {
	ticket := &model.VerificationTicket{
		Email:        "a@example.com",
		TokenHash:    "hash",
		DisplayName:  "Alice",
		PasswordHash: "pwhash",
	}
	s.Require().NoError(s.store.SaveVerification(s.ctx, ticket))

	got, err := s.store.GetVerification(s.ctx, "a@example.com")
	s.Require().NoError(err)
	s.Equal("pwhash", got.PasswordHash)

	s.Require().NoError(s.store.DeleteVerification(s.ctx, "a@example.com"))
	_, err = s.store.GetVerification(s.ctx, "a@example.com")
	s.ErrorIs(err, model.ErrTicketInvalid)
}

func (s *StoreSuite) TestVerificationExpires() {
	ticket := &model.VerificationTicket{Email: "a@example.com"}
	s.Require().NoError(s.store.SaveVerification(s.ctx, ticket))

	s.mr.FastForward(time.Hour + time.Second)

	_, err := s.store.GetVerification(s.ctx, "a@example.com")
	s.ErrorIs(err, model.ErrTicketInvalid)
}

func (s *StoreSuite) TestResetRoundTrip() {
	ticket := &model.ResetTicket{Email: "a@example.com", TokenHash: "hash"}
	s.Require().NoError(s.store.SaveReset(s.ctx, ticket))

	got, err := s.store.GetReset(s.ctx, "a@example.com")
	s.Require().NoError(err)
	s.Equal("hash", got.TokenHash)

	s.Require().NoError(s.store.DeleteReset(s.ctx, "a@example.com"))
	_, err = s.store.GetReset(s.ctx, "a@example.com")
	s.ErrorIs(err, model.ErrTicketInvalid)
}

func (s *StoreSuite) TestKeysAreNamespaced() {
	// A guest token and an email sharing the same raw value must not collide
	s.Require().NoError(s.store.SaveGuest(s.ctx, &model.GuestProfile{Token: "same"}))
	s.Require().NoError(s.store.SaveVerification(s.ctx, &model.VerificationTicket{Email: "same"}))
	s.Require().NoError(s.store.SaveReset(s.ctx, &model.ResetTicket{Email: "same"}))

	s.Require().NoError(s.store.DeleteGuest(s.ctx, "same"))

	_, err := s.store.GetVerification(s.ctx, "same")
	s.NoError(err)
	_, err = s.store.GetReset(s.ctx, "same")
	s.NoError(err)
}
