package sessions

import (
	"context"

	"github.com/aweston/flagchase/internal/model"
)

// Store is the TTL key-value store for ephemeral identities and
// single-use tickets. It must be backed by a service shared by every
// server instance; guest sessions and tickets carry no durable state,
// and expiry is enforced by the store itself, never polled.
type Store interface {
	// Guest identity operations (24h lifetime)
	SaveGuest(ctx context.Context, profile *model.GuestProfile) error
	GetGuest(ctx context.Context, token string) (*model.GuestProfile, error)
	DeleteGuest(ctx context.Context, token string) error

	// Email verification tickets (1h lifetime, consumed on success)
	SaveVerification(ctx context.Context, ticket *model.VerificationTicket) error
	GetVerification(ctx context.Context, email string) (*model.VerificationTicket, error)
	DeleteVerification(ctx context.Context, email string) error

	// Password reset tickets (1h lifetime, consumed on success)
	SaveReset(ctx context.Context, ticket *model.ResetTicket) error
	GetReset(ctx context.Context, email string) (*model.ResetTicket, error)
	DeleteReset(ctx context.Context, email string) error
}
