package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

func TestUserHandler_Me(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), rec)
	c.Set("profile", &domain.Profile{ID: "u1", Email: "a@b.com", Name: "User", Plan: "founder"})

	if err := NewUserHandler().Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "u1" || resp["email"] != "a@b.com" || resp["name"] != "User" || resp["plan"] != "founder" {
		t.Fatalf("unexpected body: %v", resp)
	}
	if v, ok := resp["avatarUrl"]; !ok || v != nil {
		t.Fatalf("avatarUrl must be present and null, got %v (present=%v)", v, ok)
	}
}

func TestUserHandler_Me_WithAvatar(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), rec)
	c.Set("profile", &domain.Profile{ID: "u1", AvatarURL: "https://img/a.png"})

	if err := NewUserHandler().Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp profileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.AvatarURL == nil || *resp.AvatarURL != "https://img/a.png" {
		t.Fatalf("unexpected avatar: %v", resp.AvatarURL)
	}
}

func TestUserHandler_Me_WithoutMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), httptest.NewRecorder())

	if err := NewUserHandler().Me(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
