package cookie

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"
)

// Jar is a key/value view of the cookies of one request/response cycle.
// It satisfies oauth.StateStore. Values are signed when the Manager has a secret.
//
// Writes are remembered, so a Get after Set or Delete in the same handler
// sees the new value even though the request cookies are unchanged.
type Jar struct {
	m       *Manager
	w       http.ResponseWriter
	r       *http.Request
	written map[string]*string // nil value = deleted
}

// Jar binds the manager to the current request and response.
func (m *Manager) Jar(w http.ResponseWriter, r *http.Request) *Jar {
	return &Jar{m: m, w: w, r: r, written: make(map[string]*string)}
}

// Get returns the cookie value, or an empty string when it is absent.
// A cookie with a bad signature is treated as absent.
func (j *Jar) Get(_ context.Context, key string) (string, error) {
	if v, ok := j.written[key]; ok {
		if v == nil {
			return "", nil
		}
		return *v, nil
	}

	var (
		value string
		err   error
	)
	if j.m.Signed() {
		value, err = j.m.GetSigned(j.r, key)
	} else {
		value, err = j.m.Get(j.r, key)
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrBadSig) {
		return "", nil
	}
	return value, err
}

// Set writes the cookie with a max age derived from ttl.
// A non-positive ttl creates a session cookie.
func (j *Jar) Set(_ context.Context, key, value string, ttl time.Duration) error {
	maxAge := maxAgeOf(ttl)
	if j.m.Signed() {
		if err := j.m.SetSigned(j.w, key, value, maxAge); err != nil {
			return err
		}
	} else {
		j.m.Set(j.w, key, value, maxAge)
	}
	j.written[key] = &value
	return nil
}

// Delete expires the cookie.
func (j *Jar) Delete(_ context.Context, key string) error {
	j.m.Delete(j.w, key)
	j.written[key] = nil
	return nil
}

func maxAgeOf(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	return int(math.Ceil(ttl.Seconds()))
}
