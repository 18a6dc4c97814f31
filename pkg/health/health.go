package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/ally/pkg/logger"
)

// DefaultTimeout bounds a whole readiness run.
const DefaultTimeout = 3 * time.Second

// Probe statuses.
const (
	StatusUp   = "up"
	StatusDown = "down"
)

// CheckFunc reports a dependency as healthy by returning nil.
type CheckFunc func(ctx context.Context) error

// Checks maps dependency names to their probes.
type Checks map[string]CheckFunc

// Report is the readiness result.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]Result `json:"checks,omitempty"`
}

// Result is the outcome of one named check.
type Result struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Option configures the readiness handler.
type Option func(*options)

type options struct {
	log     *slog.Logger
	timeout time.Duration
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger logs failing checks at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// Run executes all checks concurrently under one deadline.
func (c Checks) Run(ctx context.Context, opts ...Option) Report {
	o := &options{log: logger.NewNope(), timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}

	if len(c) == 0 {
		return Report{Status: StatusUp}
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		report = Report{Status: StatusUp, Checks: make(map[string]Result, len(c))}
	)

	// Failures are recorded, never returned, so one slow probe cannot cancel the others.
	var g errgroup.Group
	for name, check := range c {
		g.Go(func() error {
			res := Result{Status: StatusUp}
			if err := check(ctx); err != nil {
				res = Result{Status: StatusDown, Error: err.Error()}
				o.log.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = res
			if res.Status == StatusDown {
				report.Status = StatusDown
			}
			return nil
		})
	}
	_ = g.Wait()

	return report
}
