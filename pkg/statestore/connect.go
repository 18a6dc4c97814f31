package statestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectOption configures OpenRedis.
type ConnectOption func(*connectOptions)

type connectOptions struct {
	poolSize      int
	dialTimeout   time.Duration
	ioTimeout     time.Duration
	retryAttempts int
	retryInterval time.Duration
}

// WithPoolSize sets the connection pool size. Default: 10.
func WithPoolSize(n int) ConnectOption {
	return func(o *connectOptions) {
		o.poolSize = n
	}
}

// WithRetry sets how many times OpenRedis pings before giving up, and the base
// interval between attempts. The wait grows linearly with each attempt.
// Default: 3 attempts, 2 seconds.
func WithRetry(attempts int, interval time.Duration) ConnectOption {
	return func(o *connectOptions) {
		o.retryAttempts = attempts
		o.retryInterval = interval
	}
}

// WithTimeouts sets the dial timeout and the read/write timeout.
// Defaults: 5s dial, 3s read/write.
func WithTimeouts(dial, io time.Duration) ConnectOption {
	return func(o *connectOptions) {
		o.dialTimeout = dial
		o.ioTimeout = io
	}
}

// OpenRedis parses a redis:// or rediss:// URL and returns a client that has
// answered a PING. State entries are small and short-lived, so the pool is
// kept small by default.
func OpenRedis(ctx context.Context, url string, opts ...ConnectOption) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrEmptyRedisURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrInvalidRedisURL
	}

	o := &connectOptions{
		poolSize:      10,
		dialTimeout:   5 * time.Second,
		ioTimeout:     3 * time.Second,
		retryAttempts: 3,
		retryInterval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrInvalidRedisURL, err)
	}
	ro.PoolSize = o.poolSize
	ro.DialTimeout = o.dialTimeout
	ro.ReadTimeout = o.ioTimeout
	ro.WriteTimeout = o.ioTimeout

	attempts := max(o.retryAttempts, 1)

	var lastErr error
	for i := range attempts {
		client := redis.NewClient(ro)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisConnect, ctx.Err())
		case <-time.After(time.Duration(i+1) * o.retryInterval):
		}
	}

	return nil, errors.Join(ErrRedisConnect, lastErr)
}

// Ping reports whether the store's Redis server answers.
// It is meant for readiness probes.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrRedisUnhealthy, err)
	}
	return nil
}

// Close closes the underlying client. Call it only when the store owns the
// client, e.g. one returned by OpenRedis.
func (r *Redis) Close() error {
	return r.client.Close()
}
