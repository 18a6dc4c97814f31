package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// StateStore persists the anti-forgery state between the redirect and the callback.
// It must be scoped to a single client (a cookie jar bound to the current
// request/response, or a server-side store keyed by a client binding).
type StateStore interface {
	// Get returns the stored value, or an empty string when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// GetDeleter is implemented by stores that can read and remove a key in one
// atomic step. The callback uses it instead of Get followed by Delete, so two
// instances racing on a replayed callback cannot both see the state.
type GetDeleter interface {
	// GetDelete returns the stored value and removes it. A missing key
	// returns an empty string.
	GetDelete(ctx context.Context, key string) (string, error)
}

// takeState reads and removes key, atomically when the store supports it.
func takeState(ctx context.Context, states StateStore, key string) (string, error) {
	if gd, ok := states.(GetDeleter); ok {
		v, err := gd.GetDelete(ctx, key)
		if err != nil {
			return "", fmt.Errorf("oauth: take state: %w", err)
		}
		return v, nil
	}

	v, err := states.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("oauth: load state: %w", err)
	}
	if err := states.Delete(ctx, key); err != nil {
		return "", fmt.Errorf("oauth: clear state: %w", err)
	}
	return v, nil
}

const stateBytes = 32

// newState returns an unguessable base64url state value.
func newState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// StateKey returns the store key a provider uses for its state value.
func StateKey(provider string) string {
	return provider + "_oauth_state"
}
