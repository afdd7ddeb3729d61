package oauth

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

const (
	ProviderGitHub = "github"

	githubAPIURL = "https://api.github.com"
)

// GitHub signs users in with their GitHub account. Subjects are namespaced as
// github-<numeric id> so they never collide with Google subjects.
type GitHub struct {
	conf   *oauth2.Config
	apiURL string
	cfg    Config
}

// NewGitHub returns the GitHub provider. cfg.UserInfoURL, when set, replaces
// the API base URL.
func NewGitHub(cfg Config) *GitHub {
	api := cfg.UserInfoURL
	if api == "" {
		api = githubAPIURL
	}
	return &GitHub{
		conf:   cfg.oauthConfig(endpoints.GitHub, []string{"read:user", "user:email"}),
		apiURL: strings.TrimRight(api, "/"),
		cfg:    cfg,
	}
}

func (g *GitHub) Name() string { return ProviderGitHub }

func (g *GitHub) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state)
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (g *GitHub) Exchange(ctx context.Context, code string) (*domain.Identity, error) {
	client, err := exchange(ctx, g.conf, g.cfg.httpClient(), code)
	if err != nil {
		return nil, err
	}

	var user githubUser
	if err := getJSON(ctx, client, g.apiURL+"/user", &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, errors.New("github: profile has no id")
	}

	// Users with a private email only expose it through /user/emails.
	email := user.Email
	if email == "" {
		var emails []githubEmail
		if err := getJSON(ctx, client, g.apiURL+"/user/emails", &emails); err != nil {
			return nil, err
		}
		email = primaryEmail(emails)
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return &domain.Identity{
		Provider:    ProviderGitHub,
		SubjectID:   "github-" + strconv.FormatInt(user.ID, 10),
		Email:       email,
		DisplayName: name,
		AvatarURL:   user.AvatarURL,
	}, nil
}

func primaryEmail(emails []githubEmail) string {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email
		}
	}
	return ""
}
