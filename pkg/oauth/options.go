package oauth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/ally/pkg/logger"
)

// DefaultStateTTL is how long a state value stays valid between redirect and callback.
const DefaultStateTTL = 10 * time.Minute

// Option configures an OAuth driver.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	stateTTL   time.Duration
}

func newOptions(opts ...Option) options {
	o := options{
		logger:   logger.NewNope(),
		stateTTL: DefaultStateTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = http.DefaultClient
	}
	return o
}

// WithHTTPClient sets a custom HTTP client for OAuth requests.
// This is useful for testing with httptest servers or injecting
// custom transports (e.g., logging, timeouts).
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets the logger used for flow diagnostics.
// Default: a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStateTTL sets the lifetime of the stored state value.
// Default: 10 minutes.
func WithStateTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.stateTTL = d
		}
	}
}
