package logger

import (
	"context"
	"log/slog"
)

type attrsKey struct{}

// WithAttrs returns a context carrying attrs in addition to any already attached.
// ContextAttrs picks them up on every log call made with that context.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	prev, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(prev)+len(attrs))
	merged = append(merged, prev...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

// ContextAttrs is a ContextExtractor emitting the attributes stored by WithAttrs
// as a single "ctx" group.
func ContextAttrs() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
		if len(attrs) == 0 {
			return slog.Attr{}, false
		}
		args := make([]any, len(attrs))
		for i, a := range attrs {
			args[i] = a
		}
		return slog.Group("ctx", args...), true
	}
}
