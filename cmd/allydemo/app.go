package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/dmitrymomot/ally/pkg/cookie"
	"github.com/dmitrymomot/ally/pkg/health"
	"github.com/dmitrymomot/ally/pkg/oauth"
	"github.com/dmitrymomot/ally/pkg/statestore"
)

var errShortCookieSecret = fmt.Errorf("config: COOKIE_SECRET must be at least %d bytes", cookie.MinSecretLen)

type driverFactory func(oauth.Config, ...oauth.Option) (oauth.Driver, error)

var factories = map[string]driverFactory{
	oauth.BitbucketProviderName: func(c oauth.Config, o ...oauth.Option) (oauth.Driver, error) {
		return oauth.NewBitbucketDriver(c, o...)
	},
	oauth.GitHubProviderName: func(c oauth.Config, o ...oauth.Option) (oauth.Driver, error) {
		return oauth.NewGitHubDriver(c, o...)
	},
	oauth.GoogleProviderName: func(c oauth.Config, o ...oauth.Option) (oauth.Driver, error) {
		return oauth.NewGoogleDriver(c, o...)
	},
}

// app holds what the handlers share. With a nil store, state lives in signed
// cookies; otherwise it is kept server-side, scoped to a client cookie.
type app struct {
	log     *slog.Logger
	cookies *cookie.Manager
	drivers map[string]oauth.Driver
	store   statestore.Store
	checks  health.Checks
	closers []func() error
}

func newApp(ctx context.Context, cfg config, log *slog.Logger) (*app, error) {
	if len(cfg.CookieSecret) < cookie.MinSecretLen {
		return nil, errShortCookieSecret
	}

	a := &app{
		log: log,
		cookies: cookie.New(
			cookie.WithSecret(cfg.CookieSecret),
			cookie.WithSecure(cfg.CookieSecure),
		),
		drivers: make(map[string]oauth.Driver),
		checks:  health.Checks{},
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	for name, pc := range cfg.providers() {
		d, err := factories[name](pc,
			oauth.WithHTTPClient(httpClient),
			oauth.WithLogger(log),
			oauth.WithStateTTL(cfg.StateTTL),
		)
		if err != nil {
			return nil, fmt.Errorf("%s driver: %w", name, err)
		}
		a.drivers[name] = d
	}
	if len(a.drivers) == 0 {
		return nil, errNoProviders
	}

	if cfg.RedisURL != "" {
		client, err := statestore.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		rs := statestore.NewRedis(client)
		a.store = rs
		a.checks["redis"] = rs.Ping
		a.closers = append(a.closers, rs.Close)
	}

	log.Info("oauth drivers ready",
		slog.Any("providers", a.providerNames()),
		slog.Bool("server_side_state", a.store != nil),
	)

	return a, nil
}

func (a *app) providerNames() []string {
	names := make([]string, 0, len(a.drivers))
	for name := range a.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// states returns the state store for the current request.
func (a *app) states(w http.ResponseWriter, r *http.Request) (oauth.StateStore, error) {
	if a.store == nil {
		return a.cookies.Jar(w, r), nil
	}
	return statestore.Bind(w, r, a.cookies, a.store)
}

func (a *app) close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
