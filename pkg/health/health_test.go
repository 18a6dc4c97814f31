package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ally/pkg/health"
)

func TestChecksRun(t *testing.T) {
	t.Parallel()

	t.Run("no checks is up", func(t *testing.T) {
		t.Parallel()

		report := health.Checks{}.Run(context.Background())
		require.Equal(t, health.StatusUp, report.Status)
		require.Empty(t, report.Checks)
	})

	t.Run("one failing check marks report down", func(t *testing.T) {
		t.Parallel()

		report := health.Checks{
			"ok":    func(context.Context) error { return nil },
			"redis": func(context.Context) error { return errors.New("connection refused") },
		}.Run(context.Background())

		require.Equal(t, health.StatusDown, report.Status)
		require.Equal(t, health.StatusUp, report.Checks["ok"].Status)
		require.Equal(t, health.StatusDown, report.Checks["redis"].Status)
		require.Equal(t, "connection refused", report.Checks["redis"].Error)
	})

	t.Run("deadline applies to slow checks", func(t *testing.T) {
		t.Parallel()

		report := health.Checks{
			"slow": func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		}.Run(context.Background(), health.WithTimeout(20*time.Millisecond))

		require.Equal(t, health.StatusDown, report.Status)
		require.Contains(t, report.Checks["slow"].Error, "deadline exceeded")
	})
}

func TestHandlers(t *testing.T) {
	t.Parallel()

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		health.LivenessHandler()(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))
		require.JSONEq(t, `{"status":"up"}`, w.Body.String())
	})

	t.Run("readiness down answers 503", func(t *testing.T) {
		t.Parallel()

		h := health.ReadinessHandler(health.Checks{
			"redis": func(context.Context) error { return errors.New("down") },
		})
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var report health.Report
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		require.Equal(t, health.StatusDown, report.Checks["redis"].Status)
	})

	t.Run("readiness up", func(t *testing.T) {
		t.Parallel()

		h := health.ReadinessHandler(health.Checks{
			"redis": func(context.Context) error { return nil },
		})
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		require.Equal(t, http.StatusOK, w.Code)
	})
}
