package oauth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

const (
	ProviderGoogle = "google"

	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// Google signs users in with their Google account using the OpenID Connect
// userinfo endpoint.
type Google struct {
	conf        *oauth2.Config
	userInfoURL string
	cfg         Config
}

func NewGoogle(cfg Config) *Google {
	userInfo := cfg.UserInfoURL
	if userInfo == "" {
		userInfo = googleUserInfoURL
	}
	return &Google{
		conf:        cfg.oauthConfig(endpoints.Google, []string{"openid", "email", "profile"}),
		userInfoURL: userInfo,
		cfg:         cfg,
	}
}

func (g *Google) Name() string { return ProviderGoogle }

func (g *Google) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (g *Google) Exchange(ctx context.Context, code string) (*domain.Identity, error) {
	client, err := exchange(ctx, g.conf, g.cfg.httpClient(), code)
	if err != nil {
		return nil, err
	}

	var info googleUserInfo
	if err := getJSON(ctx, client, g.userInfoURL, &info); err != nil {
		return nil, err
	}
	if info.Email != "" && !info.EmailVerified {
		return nil, errors.New("google: email address is not verified")
	}

	return &domain.Identity{
		Provider:    ProviderGoogle,
		SubjectID:   info.Sub,
		Email:       info.Email,
		DisplayName: info.Name,
		AvatarURL:   info.Picture,
	}, nil
}
