package actor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/aweston/flagchase/internal/dependencies/mocks"
	"github.com/aweston/flagchase/internal/model"
	sessionmemory "github.com/aweston/flagchase/internal/sessions/memory"
)

// stubVerifier accepts a single known token
type stubVerifier struct {
	token  string
	userID model.UserID
}

func (v *stubVerifier) Verify(token string) (model.UserID, error) {
	if token == v.token {
		return v.userID, nil
	}
	return "", model.ErrInvalidToken
}

type ResolverSuite struct {
	suite.Suite
	sessions *sessionmemory.Store
	resolver *Resolver
	ctx      context.Context
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.sessions = sessionmemory.New(clk)
	s.resolver = NewResolver(&stubVerifier{token: "user-jwt", userID: "user-1"}, s.sessions)
	s.ctx = context.Background()
}

func (s *ResolverSuite) saveGuest(token string) {
	s.Require().NoError(s.sessions.SaveGuest(s.ctx, &model.GuestProfile{Token: token}))
}

func (s *ResolverSuite) TestBearerUserToken() {
	act, err := s.resolver.Resolve(s.ctx, Credential{Bearer: "user-jwt"})
	s.Require().NoError(err)
	s.False(act.IsGuest())
	s.Equal("user-1", act.ID)
}

func (s *ResolverSuite) TestBearerGuestToken() {
	s.saveGuest("guest-token")

	act, err := s.resolver.Resolve(s.ctx, Credential{Bearer: "guest-token"})
	s.Require().NoError(err)
	s.True(act.IsGuest())
	s.Equal("guest-token", act.ID)
}

func (s *ResolverSuite) TestBearerWinsOverGuestToken() {
	s.saveGuest("guest-token")

	act, err := s.resolver.Resolve(s.ctx, Credential{Bearer: "user-jwt", GuestToken: "guest-token"})
	s.Require().NoError(err)
	s.False(act.IsGuest())
	s.Equal("user-1", act.ID)
}

func (s *ResolverSuite) TestGuestTokenFallback() {
	s.saveGuest("guest-token")

	act, err := s.resolver.Resolve(s.ctx, Credential{GuestToken: "guest-token"})
	s.Require().NoError(err)
	s.True(act.IsGuest())
}

func (s *ResolverSuite) TestInvalidBearerFallsThroughToGuestToken() {
	s.saveGuest("guest-token")

	act, err := s.resolver.Resolve(s.ctx, Credential{Bearer: "garbage", GuestToken: "guest-token"})
	s.Require().NoError(err)
	s.True(act.IsGuest())
}

func (s *ResolverSuite) TestNoCredential() {
	_, err := s.resolver.Resolve(s.ctx, Credential{})
	s.Require().Error(err)
	s.True(errors.Is(err, ErrUnauthenticated))
}

func (s *ResolverSuite) TestUnknownTokens() {
	_, err := s.resolver.Resolve(s.ctx, Credential{Bearer: "garbage", GuestToken: "also-garbage"})
	s.ErrorIs(err, ErrUnauthenticated)
}

func (s *ResolverSuite) TestRequireUser() {
	s.NoError(RequireUser(model.NewUserActor("user-1")))
	s.ErrorIs(RequireUser(model.NewGuestActor("guest-token")), model.ErrGuestNotAllowed)
}
