package oauth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testCallbackURL = "https://app.example.com/auth/callback"

// mapStore is a StateStore for one simulated browser.
type mapStore struct {
	values map[string]string
	mu     sync.Mutex
}

func newMapStore() *mapStore {
	return &mapStore{values: make(map[string]string)}
}

func (s *mapStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

func (s *mapStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *mapStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// takingStore is a mapStore with an atomic GetDelete. Plain Get and Delete
// calls are counted so tests can assert the callback never uses them.
type takingStore struct {
	*mapStore
	gets, deletes, takes int
}

func (s *takingStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	s.gets++
	s.mu.Unlock()
	return s.mapStore.Get(ctx, key)
}

func (s *takingStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	s.deletes++
	s.mu.Unlock()
	return s.mapStore.Delete(ctx, key)
}

func (s *takingStore) GetDelete(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.takes++
	v := s.values[key]
	delete(s.values, key)
	return v, nil
}

var errStoreDown = errors.New("store down")

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) { return "", errStoreDown }
func (failingStore) Set(context.Context, string, string, time.Duration) error {
	return errStoreDown
}
func (failingStore) Delete(context.Context, string) error { return errStoreDown }

type failingTaker struct{ failingStore }

func (failingTaker) GetDelete(context.Context, string) (string, error) { return "", errStoreDown }

// fakeProvider is an httptest server that plays the provider's token and API endpoints.
type fakeProvider struct {
	*httptest.Server
	mux  *http.ServeMux
	hits map[string]int
	mu   sync.Mutex
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	p := &fakeProvider{mux: http.NewServeMux(), hits: make(map[string]int)}
	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.hits[r.URL.Path]++
		p.mu.Unlock()
		p.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(p.Close)
	return p
}

func (p *fakeProvider) handle(path string, h http.HandlerFunc) {
	p.mux.HandleFunc(path, h)
}

func (p *fakeProvider) json(path string, status int, body any) {
	p.handle(path, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, body)
	})
}

func (p *fakeProvider) count(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[path]
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func tokenResponse(token string) map[string]any {
	return map[string]any{"access_token": token, "token_type": "bearer"}
}

// callbackFor simulates the provider redirecting back to the app with a code.
func callbackFor(t *testing.T, redirectURL, code string) url.Values {
	t.Helper()

	u, err := url.Parse(redirectURL)
	require.NoError(t, err)

	return url.Values{
		"code":  {code},
		"state": {u.Query().Get("state")},
	}
}
