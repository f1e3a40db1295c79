package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/sessions"
)

// Store is a Redis-backed implementation of the session store
type Store struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis session store
func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Store{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis session store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Store {
	return &Store{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ensure Store implements the interface
var _ sessions.Store = (*Store)(nil)

// Guest operations

func (s *Store) SaveGuest(ctx context.Context, profile *model.GuestProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, guestKey(profile.Token), data, s.cfg.GuestTTL).Err()
}

func (s *Store) GetGuest(ctx context.Context, token string) (*model.GuestProfile, error) {
	data, err := s.client.Get(ctx, guestKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGuestNotFound
		}
		return nil, err
	}

	var profile model.GuestProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Store) DeleteGuest(ctx context.Context, token string) error {
	return s.client.Del(ctx, guestKey(token)).Err()
}

// Verification ticket operations

func (s *Store) SaveVerification(ctx context.Context, ticket *model.VerificationTicket) error {
	data, err := json.Marshal(ticket)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, verificationKey(ticket.Email), data, s.cfg.TicketTTL).Err()
}

func (s *Store) GetVerification(ctx context.Context, email string) (*model.VerificationTicket, error) {
	data, err := s.client.Get(ctx, verificationKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrTicketInvalid
		}
		return nil, err
	}

	var ticket model.VerificationTicket
	if err := json.Unmarshal(data, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *Store) DeleteVerification(ctx context.Context, email string) error {
	return s.client.Del(ctx, verificationKey(email)).Err()
}

// Reset ticket operations

func (s *Store) SaveReset(ctx context.Context, ticket *model.ResetTicket) error {
	data, err := json.Marshal(ticket)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, resetKey(ticket.Email), data, s.cfg.TicketTTL).Err()
}

func (s *Store) GetReset(ctx context.Context, email string) (*model.ResetTicket, error) {
	data, err := s.client.Get(ctx, resetKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrTicketInvalid
		}
		return nil, err
	}

	var ticket model.ResetTicket
	if err := json.Unmarshal(data, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *Store) DeleteReset(ctx context.Context, email string) error {
	return s.client.Del(ctx, resetKey(email)).Err()
}
