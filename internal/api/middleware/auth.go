package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/seckernel/kernel-api/internal/core/domain"
	"github.com/seckernel/kernel-api/internal/pkg/metrics"
)

// Authenticator resolves a bearer credential to the caller's profile.
type Authenticator interface {
	WhoAmI(credential string) (*domain.Profile, error)
}

// Auth verifies the bearer credential and injects the profile into context
// under "profile". Failures are returned as domain errors for the central
// error handler to render as 401.
func Auth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			profile, err := auth.WhoAmI(bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)))
			if err != nil {
				metrics.CredentialRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return err
			}

			c.Set("profile", profile)
			return next(c)
		}
	}
}

// bearerToken returns the credential of a "Bearer <token>" header, or "" when
// the header is missing or uses another scheme.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "missing"
	case errors.Is(err, domain.ErrExpired):
		return "expired"
	case errors.Is(err, domain.ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}
