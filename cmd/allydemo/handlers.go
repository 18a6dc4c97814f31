package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/ally/pkg/health"
	"github.com/dmitrymomot/ally/pkg/logger"
	"github.com/dmitrymomot/ally/pkg/oauth"
)

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logContext)

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(a.checks, health.WithLogger(a.log)))

	r.Route("/auth/{provider}", func(r chi.Router) {
		r.Use(a.withDriver)
		r.Get("/redirect", a.redirect)
		r.Get("/callback", a.callback)
		r.Post("/token", a.token)
	})

	return r
}

// logContext attaches the request ID to every log line written with the request context.
func logContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithAttrs(r.Context(), slog.String("request_id", middleware.GetReqID(r.Context())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type driverKey struct{}

func (a *app) withDriver(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "provider")
		d, ok := a.drivers[name]
		if !ok {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown provider"})
			return
		}

		ctx := logger.WithAttrs(r.Context(), slog.String("provider", name))
		ctx = context.WithValue(ctx, driverKey{}, d)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func driverFrom(ctx context.Context) oauth.Driver {
	d, _ := ctx.Value(driverKey{}).(oauth.Driver)
	return d
}

func (a *app) redirect(w http.ResponseWriter, r *http.Request) {
	d := driverFrom(r.Context())

	states, err := a.states(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	var scopes []string
	if s := r.URL.Query().Get("scope"); s != "" {
		scopes = strings.Split(s, ",")
	}

	target, err := d.RedirectURL(r.Context(), states, scopes...)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (a *app) callback(w http.ResponseWriter, r *http.Request) {
	d := driverFrom(r.Context())
	params := r.URL.Query()

	states, err := a.states(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if d.AccessDenied(params) {
		if err := states.Delete(r.Context(), oauth.StateKey(d.Name())); err != nil {
			a.log.WarnContext(r.Context(), "failed to clear oauth state", slog.String("error", err.Error()))
		}
		a.fail(w, r, oauth.ErrAccessDenied)
		return
	}

	user, err := d.User(r.Context(), states, params, nil)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	a.log.InfoContext(r.Context(), "user signed in", slog.String("user_id", user.ID))
	writeJSON(w, http.StatusOK, user)
}

func (a *app) token(w http.ResponseWriter, r *http.Request) {
	d := driverFrom(r.Context())

	var token string
	if v, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		token = strings.TrimSpace(v)
	}

	user, err := d.UserFromToken(r.Context(), token, nil)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type errorBody struct {
	Error string `json:"error"`
}

// fail maps driver errors to HTTP statuses. Upstream failures are logged at
// error level; client mistakes at warn.
func (a *app) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	a.log.Log(r.Context(), level, "oauth request failed",
		slog.Int("status", status),
		slog.String("error", err.Error()),
	)

	msg := http.StatusText(status)
	if status < http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, oauth.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, oauth.ErrStateMismatch),
		errors.Is(err, oauth.ErrProvider),
		errors.Is(err, oauth.ErrMissingCode),
		errors.Is(err, oauth.ErrMissingToken):
		return http.StatusBadRequest
	case errors.Is(err, oauth.ErrNoPrimaryEmail):
		return http.StatusUnprocessableEntity
	case errors.Is(err, oauth.ErrTokenExchange),
		errors.Is(err, oauth.ErrProfileFetch),
		errors.Is(err, oauth.ErrEmailFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
