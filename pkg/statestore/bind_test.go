package statestore_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ally/pkg/cookie"
	"github.com/dmitrymomot/ally/pkg/statestore"
)

const testSecret = "this-is-a-32-byte-or-longer-key!"

func TestScope(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := statestore.NewMemory(statestore.WithCleanupInterval(0))
	t.Cleanup(func() { _ = m.Close() })

	a := statestore.Scope(m, "client-a")
	b := statestore.Scope(m, "client-b")

	require.NoError(t, a.Set(ctx, "bitbucket_oauth_state", "state-a", time.Minute))

	v, err := b.Get(ctx, "bitbucket_oauth_state")
	require.NoError(t, err)
	require.Empty(t, v, "scopes must not see each other's state")

	v, err = a.Get(ctx, "bitbucket_oauth_state")
	require.NoError(t, err)
	require.Equal(t, "state-a", v)

	raw, err := m.Get(ctx, "client-a:bitbucket_oauth_state")
	require.NoError(t, err)
	require.Equal(t, "state-a", raw)
}

// plainStore has no GetDelete, so Scoped must fall back to Get then Delete.
type plainStore struct {
	values map[string]string
}

func (s *plainStore) Get(_ context.Context, key string) (string, error) { return s.values[key], nil }

func (s *plainStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	s.values[key] = value
	return nil
}

func (s *plainStore) Delete(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func TestScopedGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("delegates to atomic store", func(t *testing.T) {
		t.Parallel()

		m := statestore.NewMemory(statestore.WithCleanupInterval(0))
		t.Cleanup(func() { _ = m.Close() })

		s := statestore.Scope(m, "client-a")
		require.NoError(t, s.Set(ctx, "k", "v", time.Minute))

		v, err := s.GetDelete(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "v", v)
		require.Zero(t, m.Len())
	})

	t.Run("falls back to get and delete", func(t *testing.T) {
		t.Parallel()

		ps := &plainStore{values: map[string]string{}}
		s := statestore.Scope(ps, "client-a")
		require.NoError(t, s.Set(ctx, "k", "v", time.Minute))

		v, err := s.GetDelete(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "v", v)
		require.Empty(t, ps.values)
	})
}

func TestBind(t *testing.T) {
	t.Parallel()

	cookies := cookie.New(cookie.WithSecret(testSecret))

	t.Run("issues client cookie on first visit", func(t *testing.T) {
		t.Parallel()

		m := statestore.NewMemory(statestore.WithCleanupInterval(0))
		t.Cleanup(func() { _ = m.Close() })

		w := httptest.NewRecorder()
		s, err := statestore.Bind(w, httptest.NewRequest(http.MethodGet, "/", nil), cookies, m)
		require.NoError(t, err)

		_, err = uuid.Parse(s.ScopeID())
		require.NoError(t, err)

		found := false
		for _, c := range w.Result().Cookies() {
			if c.Name == statestore.DefaultClientCookie {
				found = true
			}
		}
		require.True(t, found)
	})

	t.Run("reuses client cookie on callback", func(t *testing.T) {
		t.Parallel()

		m := statestore.NewMemory(statestore.WithCleanupInterval(0))
		t.Cleanup(func() { _ = m.Close() })

		w := httptest.NewRecorder()
		first, err := statestore.Bind(w, httptest.NewRequest(http.MethodGet, "/", nil), cookies, m)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/callback", nil)
		for _, c := range w.Result().Cookies() {
			r.AddCookie(c)
		}

		w2 := httptest.NewRecorder()
		second, err := statestore.Bind(w2, r, cookies, m)
		require.NoError(t, err)
		require.Equal(t, first.ScopeID(), second.ScopeID())
		require.Empty(t, w2.Result().Cookies())
	})

	t.Run("replaces invalid client id", func(t *testing.T) {
		t.Parallel()

		m := statestore.NewMemory(statestore.WithCleanupInterval(0))
		t.Cleanup(func() { _ = m.Close() })

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: statestore.DefaultClientCookie, Value: "not-signed"})

		s, err := statestore.Bind(httptest.NewRecorder(), r, cookies, m)
		require.NoError(t, err)
		require.NotEqual(t, "not-signed", s.ScopeID())
	})
}
