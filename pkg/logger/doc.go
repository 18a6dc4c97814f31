// Package logger provides structured logging with context extraction and Sentry integration.
//
// It builds on log/slog: a Config picks level and format, context extractors add
// request-scoped attributes to every record, and errors can be forwarded to Sentry.
//
// # Basic Usage
//
//	log := logger.New(logger.Config{Level: "debug", Format: "json"})
//	log.InfoContext(ctx, "redirect issued", slog.String("provider", "bitbucket"))
//
// Config carries env tags (LOG_LEVEL, LOG_FORMAT, SENTRY_*) for caarlos0/env.
//
// # Context Attributes
//
// Attach attributes to a context once and have them on every log call:
//
//	log := logger.New(cfg, logger.ContextAttrs())
//	ctx = logger.WithAttrs(ctx, slog.String("request_id", id))
//	log.WarnContext(ctx, "oauth state mismatch")
//	// {"level":"WARN","msg":"oauth state mismatch","ctx":{"request_id":"..."}}
//
// Any func(context.Context) (slog.Attr, bool) can serve as a ContextExtractor,
// and NewLogHandlerDecorator applies extractors to an arbitrary slog.Handler.
//
// # Sentry Integration
//
// When Config.Sentry.DSN is set, records are also sent to Sentry: errors create
// Issues, and warnings (or only errors, with MinLevel "error") are stored as logs.
// Without a DSN, or if the SDK fails to start, logging falls back to the stream
// handler alone.
//
// # No-op Logger
//
// NewNope returns a logger that discards everything. Libraries use it as the
// default so they never write output unless a logger is injected.
package logger
