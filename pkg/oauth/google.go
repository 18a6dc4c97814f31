package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
)

const (
	// GoogleProviderName is the identifier for Google OAuth provider.
	GoogleProviderName = "google"

	googleAuthorizeURL   = "https://accounts.google.com/o/oauth2/auth"
	googleAccessTokenURL = "https://oauth2.googleapis.com/token"
	googleUserInfoURL    = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleDenialCode     = "access_denied"
)

// GoogleDefaultScopes returns the default scopes for Google OAuth.
func GoogleDefaultScopes() []string {
	return []string{
		"openid",
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	}
}

// GoogleDriver implements Driver for Google OAuth.
// Google returns the email with the profile, so UserEmailURL is unused.
type GoogleDriver struct {
	*flow
}

// NewGoogleDriver creates a new Google driver.
// Returns an error if ClientID, ClientSecret or CallbackURL is empty.
func NewGoogleDriver(cfg Config, opts ...Option) (*GoogleDriver, error) {
	f, err := newFlow(providerSpec{
		name:       GoogleProviderName,
		denialCode: googleDenialCode,
		defaults: endpoints{
			authorize:   googleAuthorizeURL,
			accessToken: googleAccessTokenURL,
			userInfo:    googleUserInfoURL,
		},
		defaultScopes: GoogleDefaultScopes(),
	}, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &GoogleDriver{flow: f}, nil
}

// User completes the login from the callback parameters.
func (d *GoogleDriver) User(ctx context.Context, states StateStore, params url.Values, fn RequestFunc) (*User, error) {
	return d.completeLogin(ctx, states, params, d.fetchUser, fn)
}

// UserFromToken fetches the user for an existing bearer token.
func (d *GoogleDriver) UserFromToken(ctx context.Context, token string, fn RequestFunc) (*User, error) {
	return d.userFromToken(ctx, token, d.fetchUser, fn)
}

func (d *GoogleDriver) fetchUser(ctx context.Context, token string, fn RequestFunc) (*User, error) {
	var gu googleUser
	body, err := fetchJSON(ctx, d.opts.httpClient, newAuthenticatedRequest(d.urls.userInfo, token), fn, &gu)
	if err != nil {
		return nil, errors.Join(ErrProfileFetch, err)
	}
	if gu.ID == "" {
		return nil, errors.Join(ErrProfileFetch, errors.New("profile has no id"))
	}
	if gu.Email == "" {
		return nil, ErrNoPrimaryEmail
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Join(ErrProfileFetch, ErrDecodeFailed, err)
	}

	return &User{
		ID:                     gu.ID,
		NickName:               firstNonEmpty(gu.GivenName, gu.Name),
		Name:                   gu.Name,
		Email:                  gu.Email,
		AvatarURL:              gu.Picture,
		EmailVerificationState: verificationState(gu.VerifiedEmail),
		Original:               raw,
	}, nil
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	Picture       string `json:"picture"`
	VerifiedEmail bool   `json:"verified_email"`
}
