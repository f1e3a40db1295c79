package model

// ActorKind distinguishes durable users from ephemeral guests
type ActorKind string

const (
	ActorUser  ActorKind = "user"
	ActorGuest ActorKind = "guest"
)

// Actor is the unified identity used in ownership and history checks.
// For users, ID is the durable user id; for guests it is the opaque
// guest token living in the session store.
type Actor struct {
	Kind ActorKind
	ID   string
}

// NewUserActor creates an Actor for a durable user
func NewUserActor(userID UserID) Actor {
	return Actor{Kind: ActorUser, ID: string(userID)}
}

// NewGuestActor creates an Actor for a guest session token
func NewGuestActor(token string) Actor {
	return Actor{Kind: ActorGuest, ID: token}
}

// IsGuest reports whether the actor is an ephemeral guest
func (a Actor) IsGuest() bool {
	return a.Kind == ActorGuest
}

// Owns reports whether the actor's id matches the given owner id
func (a Actor) Owns(ownerID string) bool {
	return a.ID == ownerID
}
