package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seckernel/kernel-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login starts the OAuth flow by redirecting to the identity provider.
//
// @Summary      Start OAuth login
// @Tags         auth
// @Param        provider  path  string  true  "Identity provider"  Enums(google, github)
// @Success      302
// @Failure      500  {object}  errorResponse
// @Router       /auth/{provider} [get]
func (h *AuthHandler) Login(c echo.Context) error {
	target, err := h.authService.BeginLogin(c.Request().Context(), c.Param("provider"))
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, target)
}

// Callback completes the OAuth flow and redirects to the front end with the
// session token in the URL fragment.
//
// @Summary      OAuth callback
// @Tags         auth
// @Param        provider           path   string  true   "Identity provider"  Enums(google, github)
// @Param        code               query  string  false  "Authorization code"
// @Param        state              query  string  false  "State nonce"
// @Param        error              query  string  false  "Provider error"
// @Param        error_description  query  string  false  "Provider error description"
// @Success      302
// @Failure      400  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /auth/{provider}/callback [get]
func (h *AuthHandler) Callback(c echo.Context) error {
	target, err := h.authService.CompleteLogin(c.Request().Context(), ports.CallbackInput{
		Provider:         c.Param("provider"),
		Code:             c.QueryParam("code"),
		State:            c.QueryParam("state"),
		Error:            c.QueryParam("error"),
		ErrorDescription: c.QueryParam("error_description"),
	})
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, target)
}
