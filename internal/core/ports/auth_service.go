package ports

import (
	"context"
	"time"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

// TokenCodec mints and verifies session credentials.
type TokenCodec interface {
	Encode(claims domain.Claims, ttl time.Duration) (string, error)
	Decode(credential string) (*domain.Claims, error)
}

// CallbackInput is what the provider sends back to /auth/:provider/callback.
type CallbackInput struct {
	Provider         string
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

type AuthService interface {
	// BeginLogin returns the provider URL the user agent is redirected to.
	BeginLogin(ctx context.Context, provider string) (string, error)
	// CompleteLogin returns the front-end URL carrying the new credential.
	CompleteLogin(ctx context.Context, in CallbackInput) (string, error)
	WhoAmI(credential string) (*domain.Profile, error)
}
