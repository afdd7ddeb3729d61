package ports

import (
	"context"
	"time"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

// IdentityProvider runs one side of an OAuth2 authorization-code flow.
type IdentityProvider interface {
	Name() string
	// AuthCodeURL returns the provider consent URL bound to state.
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the caller's identity.
	Exchange(ctx context.Context, code string) (*domain.Identity, error)
}

// StateStore keeps the single-use nonce that ties a callback to the login it
// started from.
type StateStore interface {
	Save(ctx context.Context, state, provider string, ttl time.Duration) error
	// Consume returns the provider the state was issued for and deletes it.
	// Unknown or expired states yield domain.ErrStateNotFound.
	Consume(ctx context.Context, state string) (string, error)
}
