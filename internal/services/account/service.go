package account

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/aweston/flagchase/internal/dependencies/clock"
	"github.com/aweston/flagchase/internal/dependencies/random"
	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/sessions"
	"github.com/aweston/flagchase/internal/storage"
)

const (
	// tokenAlphabet is the characters used in one-time and guest tokens
	tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// tokenLength is the length of generated opaque tokens
	tokenLength = 32
)

// Config holds configuration for the account service
type Config struct {
	// JWTSecret signs bearer tokens; must be shared by all instances
	JWTSecret []byte
	// TokenDuration is the bearer token lifetime
	TokenDuration time.Duration
}

// DefaultConfig returns default account configuration
func DefaultConfig() Config {
	return Config{
		TokenDuration: 24 * time.Hour,
	}
}

// Service handles durable accounts, guest sessions and the tickets
// that bridge the two
type Service struct {
	store    storage.Store
	sessions sessions.Store
	mailer   Mailer
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger

	jwtSecret     []byte
	tokenDuration time.Duration
}

// New creates a new account service
func New(store storage.Store, sessionStore sessions.Store, mailer Mailer, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Service {
	if cfg.TokenDuration == 0 {
		cfg.TokenDuration = DefaultConfig().TokenDuration
	}
	return &Service{
		store:         store,
		sessions:      sessionStore,
		mailer:        mailer,
		clock:         clk,
		random:        rnd,
		logger:        logger,
		jwtSecret:     cfg.JWTSecret,
		tokenDuration: cfg.TokenDuration,
	}
}

// IssueToken creates a signed bearer token for a user
func (s *Service) IssueToken(userID model.UserID) (string, error) {
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   string(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenDuration)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// Verify validates a bearer token and returns the user id it was
// issued for. Implements actor.TokenVerifier.
func (s *Service) Verify(token string) (model.UserID, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrInvalidToken
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !parsed.Valid {
		return "", model.ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", model.ErrInvalidToken
	}
	return model.UserID(claims.Subject), nil
}

// Register starts account creation: the profile is parked on a
// verification ticket in the TTL store and a one-time token is
// mailed. No user row exists until Verify succeeds.
func (s *Service) Register(ctx context.Context, email, displayName, password string) error {
	_, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return model.ErrEmailExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	token := s.random.String(tokenLength, tokenAlphabet)
	ticket := &model.VerificationTicket{
		Email:        email,
		TokenHash:    hashToken(token),
		DisplayName:  displayName,
		PasswordHash: string(passwordHash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.sessions.SaveVerification(ctx, ticket); err != nil {
		return err
	}

	return s.mailer.SendVerification(ctx, email, token)
}

// VerifyEmail consumes a verification ticket, creates the user and
// returns it with a fresh bearer token
func (s *Service) VerifyEmail(ctx context.Context, email, token string) (*model.User, string, error) {
	ticket, err := s.sessions.GetVerification(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if !tokenMatches(ticket.TokenHash, token) {
		return nil, "", model.ErrTicketInvalid
	}

	user := model.NewUser(email, ticket.DisplayName, ticket.PasswordHash, s.clock.Now())
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, "", err
	}

	// Ticket is single use; delete only after the user is committed
	if err := s.sessions.DeleteVerification(ctx, email); err != nil {
		s.logger.Warn("could not delete verification ticket", slog.String("email", email), slog.String("error", err.Error()))
	}

	bearer, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, bearer, nil
}

// Login authenticates a user and returns a fresh bearer token
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, "", model.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", model.ErrInvalidCredentials
	}

	bearer, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, bearer, nil
}

// ForgotPassword creates a reset ticket and mails its one-time token.
// An unknown email is not an error, to avoid confirming which
// addresses have accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	_, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token := s.random.String(tokenLength, tokenAlphabet)
	ticket := &model.ResetTicket{
		Email:     email,
		TokenHash: hashToken(token),
		CreatedAt: s.clock.Now(),
	}
	if err := s.sessions.SaveReset(ctx, ticket); err != nil {
		return err
	}

	return s.mailer.SendPasswordReset(ctx, email, token)
}

// ResetPassword consumes a reset ticket and sets a new password
func (s *Service) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	ticket, err := s.sessions.GetReset(ctx, email)
	if err != nil {
		return err
	}
	if !tokenMatches(ticket.TokenHash, token) {
		return model.ErrTicketInvalid
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(passwordHash)
	user.UpdatedAt = s.clock.Now()
	if err := s.store.SaveUser(ctx, user); err != nil {
		return err
	}

	return s.sessions.DeleteReset(ctx, email)
}

// GetUser returns a user by id
func (s *Service) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.store.GetUser(ctx, id)
}

// hashToken hashes a one-time token for at-rest storage
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// tokenMatches compares a stored hash against a presented token in
// constant time
func tokenMatches(storedHash, token string) bool {
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(hashToken(token))) == 1
}
