package actor

import (
	"context"
	"errors"

	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/sessions"
)

// Errors
var (
	ErrUnauthenticated = errors.New("no valid credential presented")
)

// TokenVerifier validates a bearer token and yields the durable user
// id it was issued for. Token issuance and validation mechanics live
// behind this interface.
type TokenVerifier interface {
	Verify(token string) (model.UserID, error)
}

// Credential carries the raw credentials extracted from a request
type Credential struct {
	// Bearer is the Authorization bearer value; it may be a user
	// token or a guest token.
	Bearer string
	// GuestToken is an explicit guest token from a query or body field
	GuestToken string
}

// Resolver turns inbound credentials into a uniform Actor value
type Resolver struct {
	verifier TokenVerifier
	sessions sessions.Store
}

// NewResolver creates a new Resolver
func NewResolver(verifier TokenVerifier, sessions sessions.Store) *Resolver {
	return &Resolver{
		verifier: verifier,
		sessions: sessions,
	}
}

// Resolve resolves a credential to an Actor. A valid bearer token
// always wins over a guest token; a bearer value that is not a valid
// user token is also tried against the guest session store, since
// guests present their token the same way.
func (r *Resolver) Resolve(ctx context.Context, cred Credential) (model.Actor, error) {
	if cred.Bearer != "" {
		if userID, err := r.verifier.Verify(cred.Bearer); err == nil {
			return model.NewUserActor(userID), nil
		}
		if _, err := r.sessions.GetGuest(ctx, cred.Bearer); err == nil {
			return model.NewGuestActor(cred.Bearer), nil
		}
	}

	if cred.GuestToken != "" {
		if _, err := r.sessions.GetGuest(ctx, cred.GuestToken); err == nil {
			return model.NewGuestActor(cred.GuestToken), nil
		}
	}

	return model.Actor{}, ErrUnauthenticated
}

// RequireUser rejects guest actors. Mutating author operations pass
// through this gate before any ownership check.
func RequireUser(a model.Actor) error {
	if a.IsGuest() {
		return model.ErrGuestNotAllowed
	}
	return nil
}
