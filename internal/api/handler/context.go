package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

// ctxProfile extracts the profile injected by the Auth middleware. A missing
// profile means the route was mounted without the middleware.
func ctxProfile(c echo.Context) (*domain.Profile, error) {
	p, _ := c.Get("profile").(*domain.Profile)
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}
