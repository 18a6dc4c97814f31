package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"
)

const (
	// GitHubProviderName is the identifier for GitHub OAuth provider.
	GitHubProviderName = "github"

	githubAuthorizeURL   = "https://github.com/login/oauth/authorize"
	githubAccessTokenURL = "https://github.com/login/oauth/access_token"
	githubUserURL        = "https://api.github.com/user"
	githubEmailsURL      = "https://api.github.com/user/emails"
	githubDenialCode     = "access_denied"
)

// GitHubDefaultScopes returns the default scopes for GitHub OAuth.
func GitHubDefaultScopes() []string {
	return []string{"read:user", "user:email"}
}

// GitHubDriver implements Driver for GitHub OAuth.
type GitHubDriver struct {
	*flow
}

// NewGitHubDriver creates a new GitHub driver.
// Returns an error if ClientID, ClientSecret or CallbackURL is empty.
func NewGitHubDriver(cfg Config, opts ...Option) (*GitHubDriver, error) {
	f, err := newFlow(providerSpec{
		name:       GitHubProviderName,
		denialCode: githubDenialCode,
		defaults: endpoints{
			authorize:   githubAuthorizeURL,
			accessToken: githubAccessTokenURL,
			userInfo:    githubUserURL,
			userEmail:   githubEmailsURL,
		},
		defaultScopes: GitHubDefaultScopes(),
	}, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &GitHubDriver{flow: f}, nil
}

// User completes the login from the callback parameters.
func (d *GitHubDriver) User(ctx context.Context, states StateStore, params url.Values, fn RequestFunc) (*User, error) {
	return d.completeLogin(ctx, states, params, d.fetchUser, fn)
}

// UserFromToken fetches the user for an existing bearer token.
func (d *GitHubDriver) UserFromToken(ctx context.Context, token string, fn RequestFunc) (*User, error) {
	return d.userFromToken(ctx, token, d.fetchUser, fn)
}

func (d *GitHubDriver) fetchUser(ctx context.Context, token string, fn RequestFunc) (*User, error) {
	var (
		gh    githubUser
		raw   map[string]any
		email githubEmail
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := fetchJSON(gctx, d.opts.httpClient, newAuthenticatedRequest(d.urls.userInfo, token), fn, &gh)
		if err != nil {
			return errors.Join(ErrProfileFetch, err)
		}
		if gh.ID == 0 {
			return errors.Join(ErrProfileFetch, errors.New("profile has no id"))
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return errors.Join(ErrProfileFetch, ErrDecodeFailed, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		email, err = d.fetchPrimaryEmail(gctx, token, fn)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &User{
		ID:                     strconv.FormatInt(gh.ID, 10),
		NickName:               gh.Login,
		Name:                   firstNonEmpty(gh.Name, gh.Login),
		Email:                  email.Email,
		AvatarURL:              gh.AvatarURL,
		EmailVerificationState: verificationState(email.Verified),
		Original:               raw,
	}, nil
}

func (d *GitHubDriver) fetchPrimaryEmail(ctx context.Context, token string, fn RequestFunc) (githubEmail, error) {
	var emails []githubEmail
	if _, err := fetchJSON(ctx, d.opts.httpClient, newAuthenticatedRequest(d.urls.userEmail, token), fn, &emails); err != nil {
		return githubEmail{}, errors.Join(ErrEmailFetch, err)
	}
	if emails == nil {
		return githubEmail{}, errors.Join(ErrEmailFetch, ErrDecodeFailed, errors.New("email response is null"))
	}

	for _, e := range emails {
		if e.Primary {
			return e, nil
		}
	}

	return githubEmail{}, errors.Join(ErrNoPrimaryEmail, fmt.Errorf("%d email records, none primary", len(emails)))
}

type githubUser struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	ID        int64  `json:"id"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}
