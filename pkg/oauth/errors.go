package oauth

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingClientID is returned when the OAuth client ID is not provided.
	ErrMissingClientID = errors.New("oauth: missing client ID")

	// ErrMissingClientSecret is returned when the OAuth client secret is not provided.
	ErrMissingClientSecret = errors.New("oauth: missing client secret")

	// ErrMissingCallbackURL is returned when the OAuth callback URL is not provided.
	ErrMissingCallbackURL = errors.New("oauth: missing callback URL")

	// ErrStateMismatch is returned when the callback state is absent or does not
	// match the state stored before the redirect. The login attempt must be restarted.
	ErrStateMismatch = errors.New("oauth: state mismatch")

	// ErrAccessDenied is returned when the user declined the consent screen.
	ErrAccessDenied = errors.New("oauth: access denied by user")

	// ErrProvider is matched by every *ProviderError.
	ErrProvider = errors.New("oauth: provider returned an error")

	// ErrMissingCode is returned when the callback carries neither an error nor a code.
	ErrMissingCode = errors.New("oauth: missing authorization code")

	// ErrMissingToken is returned when an empty access token is passed to UserFromToken.
	ErrMissingToken = errors.New("oauth: missing access token")

	// ErrTokenExchange is returned when trading the authorization code for a token fails.
	ErrTokenExchange = errors.New("oauth: token exchange failed")

	// ErrProfileFetch is returned when the user profile cannot be fetched or lacks required fields.
	ErrProfileFetch = errors.New("oauth: failed to fetch user profile")

	// ErrEmailFetch is returned when the user email list cannot be fetched.
	ErrEmailFetch = errors.New("oauth: failed to fetch user emails")

	// ErrNoPrimaryEmail is returned when the provider reports no primary email for the user.
	ErrNoPrimaryEmail = errors.New("oauth: no primary email")

	// ErrNilResponse is returned when the OAuth provider returns a nil response.
	ErrNilResponse = errors.New("oauth: nil response from provider")

	// ErrFetchFailed is returned when the HTTP request to the OAuth provider fails.
	ErrFetchFailed = errors.New("oauth: failed to fetch from provider")

	// ErrRequestFailed is returned when the OAuth provider returns a non-2xx status.
	ErrRequestFailed = errors.New("oauth: request returned non-OK status")

	// ErrDecodeFailed is returned when decoding the OAuth provider response fails.
	ErrDecodeFailed = errors.New("oauth: failed to decode response")
)

// ProviderError is returned when the provider redirects back with an error
// code other than the user-denial code.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("oauth: provider error %q", e.Code)
	}
	return fmt.Sprintf("oauth: provider error %q: %s", e.Code, e.Description)
}

// Is reports ErrProvider as a match so callers can use errors.Is.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}
