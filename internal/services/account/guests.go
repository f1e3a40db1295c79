package account

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/aweston/flagchase/internal/model"
)

// InitGuest creates an ephemeral guest session and returns its profile
func (s *Service) InitGuest(ctx context.Context, displayName string) (*model.GuestProfile, error) {
	profile := &model.GuestProfile{
		Token:       s.random.String(tokenLength, tokenAlphabet),
		DisplayName: displayName,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.sessions.SaveGuest(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetGuest looks up a guest session by token
func (s *Service) GetGuest(ctx context.Context, token string) (*model.GuestProfile, error) {
	return s.sessions.GetGuest(ctx, token)
}

// EndGuest removes a guest session
func (s *Service) EndGuest(ctx context.Context, token string) error {
	return s.sessions.DeleteGuest(ctx, token)
}

// UpgradeGuest converts a guest session into a durable account. The
// user row is committed first and the guest entry removed after; a
// brief window where both exist is harmless since the guest entry
// carries no durable state.
func (s *Service) UpgradeGuest(ctx context.Context, token, email, displayName, password string) (*model.User, string, error) {
	guest, err := s.sessions.GetGuest(ctx, token)
	if err != nil {
		return nil, "", err
	}

	_, err = s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, "", model.ErrEmailExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, "", err
	}

	if displayName == "" {
		displayName = guest.DisplayName
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := model.NewUser(email, displayName, string(passwordHash), s.clock.Now())
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, "", err
	}

	if err := s.sessions.DeleteGuest(ctx, token); err != nil {
		s.logger.Warn("could not delete upgraded guest session", slog.String("error", err.Error()))
	}

	bearer, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, bearer, nil
}
