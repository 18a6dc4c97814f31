package statestore

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/ally/pkg/cookie"
)

// Store is the storage a Scoped view writes through. Memory and Redis implement it.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DefaultClientCookie names the cookie that carries the client binding.
const DefaultClientCookie = "oauth_client"

// clientTTL keeps the binding alive long enough for one login round-trip.
const clientTTL = time.Hour

// Scoped is a view of a shared Store restricted to one client.
// Keys are stored as "{scope}:{key}".
type Scoped struct {
	store Store
	scope string
}

// Scope returns a view of store whose keys are prefixed with scope.
func Scope(store Store, scope string) *Scoped {
	return &Scoped{store: store, scope: scope}
}

// ScopeID returns the client scope of the view.
func (s *Scoped) ScopeID() string {
	return s.scope
}

// Get returns the value for key within the scope.
func (s *Scoped) Get(ctx context.Context, key string) (string, error) {
	return s.store.Get(ctx, s.key(key))
}

// Set stores value under key within the scope.
func (s *Scoped) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.store.Set(ctx, s.key(key), value, ttl)
}

// GetDelete reads and removes key within the scope. It is atomic when the
// underlying store implements GetDelete, and falls back to Get then Delete otherwise.
func (s *Scoped) GetDelete(ctx context.Context, key string) (string, error) {
	if gd, ok := s.store.(interface {
		GetDelete(ctx context.Context, key string) (string, error)
	}); ok {
		return gd.GetDelete(ctx, s.key(key))
	}

	v, err := s.store.Get(ctx, s.key(key))
	if err != nil {
		return "", err
	}
	if err := s.store.Delete(ctx, s.key(key)); err != nil {
		return "", err
	}
	return v, nil
}

// Delete removes key within the scope.
func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.key(key))
}

func (s *Scoped) key(key string) string {
	return s.scope + ":" + key
}

// Bind scopes store to the browser making r. The client is identified by a
// random ID kept in a signed cookie (when the manager has a secret); a new ID
// is issued when the cookie is missing or invalid.
func Bind(w http.ResponseWriter, r *http.Request, cookies *cookie.Manager, store Store) (*Scoped, error) {
	jar := cookies.Jar(w, r)

	id, err := jar.Get(r.Context(), DefaultClientCookie)
	if err != nil {
		return nil, err
	}
	if _, perr := uuid.Parse(id); perr != nil {
		id = uuid.NewString()
		if err := jar.Set(r.Context(), DefaultClientCookie, id, clientTTL); err != nil {
			return nil, err
		}
	}

	return Scope(store, id), nil
}
