package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"
)

const (
	// BitbucketProviderName is the identifier for Bitbucket OAuth provider.
	BitbucketProviderName = "bitbucket"

	bitbucketAuthorizeURL   = "https://bitbucket.org/site/oauth2/authorize"
	bitbucketAccessTokenURL = "https://bitbucket.org/site/oauth2/access_token"
	bitbucketUserURL        = "https://api.bitbucket.org/2.0/user"
	bitbucketEmailsURL      = "https://api.bitbucket.org/2.0/user/emails"
	bitbucketDenialCode     = "user_denied"
)

// Bitbucket scopes.
// See https://support.atlassian.com/bitbucket-cloud/docs/use-oauth-on-bitbucket-cloud/#Scopes
const (
	BitbucketScopeAccount         = "account"
	BitbucketScopeAccountWrite    = "account:write"
	BitbucketScopeTeam            = "team"
	BitbucketScopeTeamWrite       = "team:write"
	BitbucketScopeRepository      = "repository"
	BitbucketScopeRepositoryWrite = "repository:write"
	BitbucketScopeRepositoryAdmin = "repository:admin"
	BitbucketScopePullRequest     = "pullrequest"
	BitbucketScopePullRequestW    = "pullrequest:write"
	BitbucketScopeSnippet         = "snippet"
	BitbucketScopeSnippetWrite    = "snippet:write"
	BitbucketScopeIssue           = "issue"
	BitbucketScopeIssueWrite      = "issue:write"
	BitbucketScopeWiki            = "wiki"
	BitbucketScopeEmail           = "email"
	BitbucketScopeWebhook         = "webhook"
)

// BitbucketDefaultScopes returns the scopes requested when none are configured.
func BitbucketDefaultScopes() []string {
	return []string{BitbucketScopeAccount, BitbucketScopeEmail}
}

// BitbucketDriver implements Driver for Bitbucket Cloud.
type BitbucketDriver struct {
	*flow
}

// NewBitbucketDriver creates a new Bitbucket driver.
// Returns an error if ClientID, ClientSecret or CallbackURL is empty.
func NewBitbucketDriver(cfg Config, opts ...Option) (*BitbucketDriver, error) {
	f, err := newFlow(providerSpec{
		name:       BitbucketProviderName,
		denialCode: bitbucketDenialCode,
		authParams: map[string]string{"grant_type": "authorization_code"},
		defaults: endpoints{
			authorize:   bitbucketAuthorizeURL,
			accessToken: bitbucketAccessTokenURL,
			userInfo:    bitbucketUserURL,
			userEmail:   bitbucketEmailsURL,
		},
		defaultScopes: BitbucketDefaultScopes(),
	}, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &BitbucketDriver{flow: f}, nil
}

// User completes the login from the callback parameters.
func (d *BitbucketDriver) User(ctx context.Context, states StateStore, params url.Values, fn RequestFunc) (*User, error) {
	return d.completeLogin(ctx, states, params, d.fetchUser, fn)
}

// UserFromToken fetches the user for an existing bearer token.
func (d *BitbucketDriver) UserFromToken(ctx context.Context, token string, fn RequestFunc) (*User, error) {
	return d.userFromToken(ctx, token, d.fetchUser, fn)
}

// fetchUser loads the profile and the email list concurrently.
//
// See https://developer.atlassian.com/bitbucket/api/2/reference/resource/user
func (d *BitbucketDriver) fetchUser(ctx context.Context, token string, fn RequestFunc) (*User, error) {
	var (
		profile bitbucketProfile
		raw     map[string]any
		email   bitbucketEmail
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, raw, err = d.fetchProfile(gctx, token, fn)
		return err
	})
	g.Go(func() error {
		var err error
		email, err = d.fetchPrimaryEmail(gctx, token, fn)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return normalizeBitbucketUser(profile, raw, email), nil
}

func (d *BitbucketDriver) fetchProfile(ctx context.Context, token string, fn RequestFunc) (bitbucketProfile, map[string]any, error) {
	var profile bitbucketProfile
	body, err := fetchJSON(ctx, d.opts.httpClient, newAuthenticatedRequest(d.urls.userInfo, token), fn, &profile)
	if err != nil {
		return profile, nil, errors.Join(ErrProfileFetch, err)
	}
	if profile.UUID == "" {
		return profile, nil, errors.Join(ErrProfileFetch, errors.New("profile has no uuid"))
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return profile, nil, errors.Join(ErrProfileFetch, ErrDecodeFailed, err)
	}

	return profile, raw, nil
}

// fetchPrimaryEmail returns the email record flagged as primary.
//
// See https://developer.atlassian.com/bitbucket/api/2/reference/resource/user/emails
func (d *BitbucketDriver) fetchPrimaryEmail(ctx context.Context, token string, fn RequestFunc) (bitbucketEmail, error) {
	var list bitbucketEmailList
	if _, err := fetchJSON(ctx, d.opts.httpClient, newAuthenticatedRequest(d.urls.userEmail, token), fn, &list); err != nil {
		return bitbucketEmail{}, errors.Join(ErrEmailFetch, err)
	}

	if list.Values == nil {
		return bitbucketEmail{}, errors.Join(ErrEmailFetch, ErrDecodeFailed, errors.New("email response has no values"))
	}

	email, ok := list.primary()
	if !ok {
		return bitbucketEmail{}, errors.Join(ErrNoPrimaryEmail, fmt.Errorf("%d email records, none primary", len(*list.Values)))
	}
	return email, nil
}

func normalizeBitbucketUser(p bitbucketProfile, raw map[string]any, e bitbucketEmail) *User {
	return &User{
		ID:                     p.UUID,
		NickName:               p.Nickname,
		Name:                   p.DisplayName,
		Email:                  e.Email,
		AvatarURL:              p.Links.Avatar.Href,
		EmailVerificationState: verificationState(e.IsConfirmed),
		Original:               raw,
	}
}

type bitbucketProfile struct {
	UUID        string `json:"uuid"`
	Nickname    string `json:"nickname"`
	DisplayName string `json:"display_name"`
	Links       struct {
		Avatar struct {
			Href string `json:"href"`
		} `json:"avatar"`
	} `json:"links"`
}

type bitbucketEmail struct {
	Email       string `json:"email"`
	IsPrimary   bool   `json:"is_primary"`
	IsConfirmed bool   `json:"is_confirmed"`
}

// bitbucketEmailList keeps Values as a pointer so that an absent or null
// "values" field is told apart from an empty list.
type bitbucketEmailList struct {
	Values *[]bitbucketEmail `json:"values"`
}

func (l bitbucketEmailList) primary() (bitbucketEmail, bool) {
	if l.Values == nil {
		return bitbucketEmail{}, false
	}
	for _, e := range *l.Values {
		if e.IsPrimary {
			return e, true
		}
	}
	return bitbucketEmail{}, false
}
