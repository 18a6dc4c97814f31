package cookie_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ally/pkg/cookie"
	"github.com/dmitrymomot/ally/pkg/oauth"
)

var _ oauth.StateStore = (*cookie.Jar)(nil)

func TestJar(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("missing key returns empty string", func(t *testing.T) {
		t.Parallel()

		m := cookie.New(cookie.WithSecret(testSecret))
		jar := m.Jar(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		v, err := jar.Get(ctx, "bitbucket_oauth_state")
		require.NoError(t, err)
		require.Empty(t, v)
	})

	t.Run("set is signed and readable on next request", func(t *testing.T) {
		t.Parallel()

		m := cookie.New(cookie.WithSecret(testSecret))
		w := httptest.NewRecorder()
		jar := m.Jar(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NoError(t, jar.Set(ctx, "bitbucket_oauth_state", "s1", 10*time.Minute))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, 600, cookies[0].MaxAge)
		require.NotEqual(t, "s1", cookies[0].Value)

		r := httptest.NewRequest(http.MethodGet, "/callback", nil)
		r.AddCookie(cookies[0])

		v, err := m.Jar(httptest.NewRecorder(), r).Get(ctx, "bitbucket_oauth_state")
		require.NoError(t, err)
		require.Equal(t, "s1", v)
	})

	t.Run("plain cookies without secret", func(t *testing.T) {
		t.Parallel()

		m := cookie.New()
		w := httptest.NewRecorder()
		require.NoError(t, m.Jar(w, httptest.NewRequest(http.MethodGet, "/", nil)).Set(ctx, "k", "v", time.Minute))

		c := w.Result().Cookies()[0]
		require.Equal(t, "v", c.Value)
	})

	t.Run("forged cookie reads as absent", func(t *testing.T) {
		t.Parallel()

		m := cookie.New(cookie.WithSecret(testSecret))
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "bitbucket_oauth_state", Value: "forged"})

		v, err := m.Jar(httptest.NewRecorder(), r).Get(ctx, "bitbucket_oauth_state")
		require.NoError(t, err)
		require.Empty(t, v)
	})

	t.Run("writes are visible within the same request", func(t *testing.T) {
		t.Parallel()

		m := cookie.New(cookie.WithSecret(testSecret))

		w := httptest.NewRecorder()
		require.NoError(t, m.Jar(w, httptest.NewRequest(http.MethodGet, "/", nil)).Set(ctx, "k", "old", time.Minute))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(w.Result().Cookies()[0])
		jar := m.Jar(httptest.NewRecorder(), r)

		require.NoError(t, jar.Set(ctx, "k", "new", time.Minute))
		v, err := jar.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "new", v)

		require.NoError(t, jar.Delete(ctx, "k"))
		v, err = jar.Get(ctx, "k")
		require.NoError(t, err)
		require.Empty(t, v)
	})

	t.Run("delete expires cookie", func(t *testing.T) {
		t.Parallel()

		m := cookie.New()
		w := httptest.NewRecorder()
		require.NoError(t, m.Jar(w, httptest.NewRequest(http.MethodGet, "/", nil)).Delete(ctx, "k"))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, -1, cookies[0].MaxAge)
	})
}
