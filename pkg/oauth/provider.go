package oauth

import (
	"context"
	"net/url"
)

// TokenTypeBearer is the only token type drivers produce.
const TokenTypeBearer = "bearer"

// EmailVerificationState reports whether the provider confirmed the user's email.
type EmailVerificationState string

// Email verification states.
const (
	EmailVerified   EmailVerificationState = "verified"
	EmailUnverified EmailVerificationState = "unverified"
)

// AccessToken is the bearer token obtained from a code exchange or supplied by the caller.
// Persisting it is the caller's job.
type AccessToken struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

// User is the provider-agnostic profile returned by every driver.
type User struct {
	Original               map[string]any         `json:"original"` // decoded profile payload as the provider sent it
	ID                     string                 `json:"id"`
	NickName               string                 `json:"nick_name"`
	Name                   string                 `json:"name"`
	Email                  string                 `json:"email"`
	AvatarURL              string                 `json:"avatar_url,omitempty"` // empty when the provider has none
	EmailVerificationState EmailVerificationState `json:"email_verification_state"`
	Token                  AccessToken            `json:"token"`
}

// Driver abstracts provider-specific OAuth operations so the host can treat
// every provider identically. Implementations are safe for concurrent use;
// per-request data travels through the method arguments.
type Driver interface {
	// Name returns the provider identifier (e.g., "bitbucket", "github").
	Name() string

	// RedirectURL generates a fresh state, persists it in states and returns
	// the provider authorization URL. Scopes override the configured ones.
	RedirectURL(ctx context.Context, states StateStore, scopes ...string) (string, error)

	// AccessDenied reports whether the callback says the user declined consent.
	AccessDenied(params url.Values) bool

	// User validates the callback, exchanges the code and fetches the profile.
	// fn, when not nil, may adjust every outgoing profile request.
	User(ctx context.Context, states StateStore, params url.Values, fn RequestFunc) (*User, error)

	// UserFromToken fetches the profile for a token the caller already holds.
	// The token endpoint is never contacted.
	UserFromToken(ctx context.Context, token string, fn RequestFunc) (*User, error)
}

func bearerToken(token string) AccessToken {
	return AccessToken{Token: token, Type: TokenTypeBearer}
}

func verificationState(confirmed bool) EmailVerificationState {
	if confirmed {
		return EmailVerified
	}
	return EmailUnverified
}
