package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/aweston/flagchase/internal/api/apierr"
	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/services/actor"
)

type contextKey string

const actorContextKey contextKey = "actor"

// Auth creates authentication middleware. It resolves the caller to
// an Actor from the bearer token or a guest token and rejects the
// request when neither resolves.
func Auth(resolver *actor.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			act, err := resolver.Resolve(r.Context(), ExtractCredential(r))
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), actorContextKey, act)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves an actor if a credential is present but does
// not require one. Handlers that accept a guest token in the request
// body complete resolution themselves.
func OptionalAuth(resolver *actor.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if act, err := resolver.Resolve(r.Context(), ExtractCredential(r)); err == nil {
				ctx := context.WithValue(r.Context(), actorContextKey, act)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ExtractCredential pulls the raw credentials off the request: a
// bearer value from the Authorization header and an explicit guest
// token from the query string.
func ExtractCredential(r *http.Request) actor.Credential {
	cred := actor.Credential{
		GuestToken: r.URL.Query().Get("guest_token"),
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		cred.Bearer = strings.TrimPrefix(authHeader, "Bearer ")
	}

	return cred
}

// GetActor returns the resolved actor from the request context
func GetActor(ctx context.Context) (model.Actor, bool) {
	act, ok := ctx.Value(actorContextKey).(model.Actor)
	return act, ok
}

// MustGetActor returns the resolved actor or panics
func MustGetActor(ctx context.Context) model.Actor {
	act, ok := GetActor(ctx)
	if !ok {
		panic("no actor in context - auth middleware not applied?")
	}
	return act
}

// WithActor returns a context carrying the given actor. Used by
// handlers that resolve a guest token from the request body, and by
// tests.
func WithActor(ctx context.Context, act model.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, act)
}
