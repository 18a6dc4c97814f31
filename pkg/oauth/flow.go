package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"

	"golang.org/x/oauth2"
)

// providerSpec is everything provider-specific about the authorization code flow.
type providerSpec struct {
	authParams    map[string]string // extra authorize query parameters
	name          string
	denialCode    string // value of the callback "error" parameter when the user declines
	defaults      endpoints
	defaultScopes []string
}

// profileFunc fetches and normalizes the user for an access token.
type profileFunc func(ctx context.Context, token string, fn RequestFunc) (*User, error)

// flow implements the provider-independent part of the authorization code flow.
// Drivers embed it and supply a profileFunc.
type flow struct {
	config   *oauth2.Config
	log      *slog.Logger
	spec     providerSpec
	urls     endpoints
	stateKey string
	opts     options
}

func newFlow(spec providerSpec, cfg Config, opts ...Option) (*flow, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := newOptions(opts...)
	urls := cfg.endpoints(spec.defaults)

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = spec.defaultScopes
	}

	return &flow{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       slices.Clone(scopes),
			Endpoint: oauth2.Endpoint{
				AuthURL:   urls.authorize,
				TokenURL:  urls.accessToken,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		log:      o.logger.With(slog.String("provider", spec.name)),
		spec:     spec,
		urls:     urls,
		stateKey: StateKey(spec.name),
		opts:     o,
	}, nil
}

// Name returns the provider identifier.
func (f *flow) Name() string {
	return f.spec.name
}

// RedirectURL generates a new state, stores it and returns the authorization URL.
// Scopes passed here replace the configured scopes for this redirect only.
func (f *flow) RedirectURL(ctx context.Context, states StateStore, scopes ...string) (string, error) {
	state, err := newState()
	if err != nil {
		return "", fmt.Errorf("oauth: generate state: %w", err)
	}
	if err := states.Set(ctx, f.stateKey, state, f.opts.stateTTL); err != nil {
		return "", fmt.Errorf("oauth: store state: %w", err)
	}

	cfg := f.config
	if len(scopes) > 0 {
		c := *f.config
		c.Scopes = slices.Clone(scopes)
		cfg = &c
	}

	opts := make([]oauth2.AuthCodeOption, 0, len(f.spec.authParams))
	for k, v := range f.spec.authParams {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}

	return cfg.AuthCodeURL(state, opts...), nil
}

// AccessDenied reports whether the callback error equals the provider's denial code.
func (f *flow) AccessDenied(params url.Values) bool {
	return params.Get("error") == f.spec.denialCode
}

// validateCallback checks the callback against the stored state and returns the code.
// The stored state is removed before any check, so it can never be replayed.
func (f *flow) validateCallback(ctx context.Context, states StateStore, params url.Values) (string, error) {
	stored, err := takeState(ctx, states, f.stateKey)
	if err != nil {
		return "", err
	}

	received := params.Get("state")
	if stored == "" || received == "" || stored != received {
		f.log.WarnContext(ctx, "oauth state mismatch",
			slog.Bool("stored", stored != ""),
			slog.Bool("received", received != ""),
		)
		return "", ErrStateMismatch
	}

	if code := params.Get("error"); code != "" {
		if code == f.spec.denialCode {
			f.log.InfoContext(ctx, "oauth access denied by user")
			return "", ErrAccessDenied
		}
		f.log.WarnContext(ctx, "oauth provider error", slog.String("code", code))
		return "", &ProviderError{Code: code, Description: params.Get("error_description")}
	}

	code := params.Get("code")
	if code == "" {
		return "", ErrMissingCode
	}
	return code, nil
}

// exchange trades the authorization code for an access token. It is never retried:
// the code is single-use.
func (f *flow) exchange(ctx context.Context, code string) (AccessToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.opts.httpClient)

	tok, err := f.config.Exchange(ctx, code)
	if err != nil {
		f.log.WarnContext(ctx, "oauth token exchange failed", slog.String("error", err.Error()))
		return AccessToken{}, errors.Join(ErrTokenExchange, err)
	}

	return bearerToken(tok.AccessToken), nil
}

// completeLogin runs the callback half of the flow: validate, exchange, fetch.
func (f *flow) completeLogin(ctx context.Context, states StateStore, params url.Values, fetch profileFunc, fn RequestFunc) (*User, error) {
	code, err := f.validateCallback(ctx, states, params)
	if err != nil {
		return nil, err
	}

	token, err := f.exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := fetch(ctx, token.Token, fn)
	if err != nil {
		return nil, err
	}
	user.Token = token

	return user, nil
}

// userFromToken fetches the profile for a caller-held token.
func (f *flow) userFromToken(ctx context.Context, token string, fetch profileFunc, fn RequestFunc) (*User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	user, err := fetch(ctx, token, fn)
	if err != nil {
		return nil, err
	}
	user.Token = bearerToken(token)

	return user, nil
}
