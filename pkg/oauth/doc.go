// Package oauth provides OAuth2 authorization code login drivers for social providers.
//
// Every provider is exposed through the Driver interface, so the host application can
// run the same redirect/callback code for all of them. Bitbucket, GitHub and Google
// drivers are included. Each driver builds the authorization redirect, verifies the
// anti-forgery state on callback, exchanges the code for a bearer token and normalizes
// the provider profile into a User.
//
// # Features
//
//   - Driver interface for pluggable providers
//   - One-shot CSRF state persisted through an injected StateStore
//   - Code exchange on golang.org/x/oauth2, never retried
//   - Profile and primary email fetched concurrently
//   - RequestFunc hook to adjust outgoing profile requests
//   - Per-instance endpoint overrides through Config
//   - Sentinel errors with "oauth:" prefix for consistent error handling
//
// # Usage
//
//	driver, err := oauth.NewBitbucketDriver(oauth.Config{
//		ClientID:     os.Getenv("BITBUCKET_OAUTH_CLIENT_ID"),
//		ClientSecret: os.Getenv("BITBUCKET_OAUTH_CLIENT_SECRET"),
//		CallbackURL:  "https://example.com/auth/bitbucket/callback",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Redirect handler, with the state kept in a signed cookie:
//
//	cookies := cookie.New(cookie.WithSecret(secret))
//
//	func redirect(w http.ResponseWriter, r *http.Request) {
//		target, err := driver.RedirectURL(r.Context(), cookies.Jar(w, r))
//		if err != nil {
//			// handle error
//		}
//		http.Redirect(w, r, target, http.StatusFound)
//	}
//
// Callback handler:
//
//	func callback(w http.ResponseWriter, r *http.Request) {
//		if driver.AccessDenied(r.URL.Query()) {
//			// user declined
//		}
//		user, err := driver.User(r.Context(), cookies.Jar(w, r), r.URL.Query(), nil)
//		if err != nil {
//			// handle error
//		}
//	}
//
// Clients that already hold a token (e.g. mobile apps) skip the redirect:
//
//	user, err := driver.UserFromToken(ctx, accessToken, nil)
//
// # State
//
// RedirectURL stores 32 random bytes under "<provider>_oauth_state". The callback
// reads and deletes that entry before comparing it byte-for-byte with the "state"
// parameter, so a state value can be checked only once. Stores that implement
// GetDeleter do the read and the delete in one atomic call.
//
// # Error Handling
//
//   - ErrStateMismatch: callback state missing or different; restart the flow
//   - ErrAccessDenied: the user declined consent (not a failure)
//   - ErrProvider / *ProviderError: provider returned another error code
//   - ErrMissingCode: callback carries no code
//   - ErrTokenExchange: token endpoint failed or returned a malformed body
//   - ErrProfileFetch, ErrEmailFetch: profile or email endpoint failed
//   - ErrNoPrimaryEmail: email list has no primary record
//
// Transport details are joined in: ErrFetchFailed, ErrNilResponse,
// ErrRequestFailed, ErrDecodeFailed. Use errors.Is for checking:
//
//	if errors.Is(err, oauth.ErrStateMismatch) {
//		// restart login
//	}
//
// # Testing
//
// Point the endpoints at an httptest server through Config overrides, or inject
// a client with WithHTTPClient:
//
//	driver, err := oauth.NewBitbucketDriver(oauth.Config{
//		ClientID:       "id",
//		ClientSecret:   "secret",
//		CallbackURL:    "https://example.com/callback",
//		AccessTokenURL: ts.URL + "/token",
//		UserInfoURL:    ts.URL + "/user",
//		UserEmailURL:   ts.URL + "/emails",
//	}, oauth.WithHTTPClient(ts.Client()))
package oauth
