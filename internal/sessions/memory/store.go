package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aweston/flagchase/internal/dependencies/clock"
	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/sessions"
)

// Store is an in-memory implementation of the session store for
// tests and local development. Expiry is checked lazily against the
// injected clock on read.
type Store struct {
	clock     clock.Clock
	guestTTL  time.Duration
	ticketTTL time.Duration

	mu            sync.RWMutex
	guests        map[string]entry[*model.GuestProfile]
	verifications map[string]entry[*model.VerificationTicket]
	resets        map[string]entry[*model.ResetTicket]
}

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// New creates a new in-memory session store
func New(clk clock.Clock) *Store {
	return &Store{
		clock:         clk,
		guestTTL:      24 * time.Hour,
		ticketTTL:     time.Hour,
		guests:        make(map[string]entry[*model.GuestProfile]),
		verifications: make(map[string]entry[*model.VerificationTicket]),
		resets:        make(map[string]entry[*model.ResetTicket]),
	}
}

// Ensure Store implements the interface
var _ sessions.Store = (*Store)(nil)

func (s *Store) SaveGuest(ctx context.Context, profile *model.GuestProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guests[profile.Token] = entry[*model.GuestProfile]{
		value:     profile,
		expiresAt: s.clock.Now().Add(s.guestTTL),
	}
	return nil
}

func (s *Store) GetGuest(ctx context.Context, token string) (*model.GuestProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.guests[token]
	if !ok || s.clock.Now().After(e.expiresAt) {
		return nil, model.ErrGuestNotFound
	}
	profile := *e.value
	return &profile, nil
}

func (s *Store) DeleteGuest(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.guests, token)
	return nil
}

func (s *Store) SaveVerification(ctx context.Context, ticket *model.VerificationTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications[ticket.Email] = entry[*model.VerificationTicket]{
		value:     ticket,
		expiresAt: s.clock.Now().Add(s.ticketTTL),
	}
	return nil
}

func (s *Store) GetVerification(ctx context.Context, email string) (*model.VerificationTicket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.verifications[email]
	if !ok || s.clock.Now().After(e.expiresAt) {
		return nil, model.ErrTicketInvalid
	}
	ticket := *e.value
	return &ticket, nil
}

func (s *Store) DeleteVerification(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.verifications, email)
	return nil
}

func (s *Store) SaveReset(ctx context.Context, ticket *model.ResetTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets[ticket.Email] = entry[*model.ResetTicket]{
		value:     ticket,
		expiresAt: s.clock.Now().Add(s.ticketTTL),
	}
	return nil
}

func (s *Store) GetReset(ctx context.Context, email string) (*model.ResetTicket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.resets[email]
	if !ok || s.clock.Now().After(e.expiresAt) {
		return nil, model.ErrTicketInvalid
	}
	ticket := *e.value
	return &ticket, nil
}

func (s *Store) DeleteReset(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.resets, email)
	return nil
}
