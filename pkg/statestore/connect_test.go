package statestore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ally/pkg/statestore"
)

func TestOpenRedis(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty url", func(t *testing.T) {
		t.Parallel()

		_, err := statestore.OpenRedis(ctx, "")
		require.ErrorIs(t, err, statestore.ErrEmptyRedisURL)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		t.Parallel()

		_, err := statestore.OpenRedis(ctx, "http://localhost:6379")
		require.ErrorIs(t, err, statestore.ErrInvalidRedisURL)
	})

	t.Run("malformed url", func(t *testing.T) {
		t.Parallel()

		_, err := statestore.OpenRedis(ctx, "redis://localhost:6379/notadb")
		require.ErrorIs(t, err, statestore.ErrInvalidRedisURL)
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		_, err := statestore.OpenRedis(ctx, "redis://127.0.0.1:1/0",
			statestore.WithRetry(1, time.Millisecond),
			statestore.WithTimeouts(100*time.Millisecond, 100*time.Millisecond),
		)
		require.ErrorIs(t, err, statestore.ErrRedisConnect)
	})

	t.Run("canceled context stops retries", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := statestore.OpenRedis(ctx, "redis://127.0.0.1:1/0",
			statestore.WithRetry(5, time.Hour),
		)
		require.ErrorIs(t, err, statestore.ErrRedisConnect)
	})
}
