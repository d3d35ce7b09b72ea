// Package logctx carries request and event scoped loggers on a context.
package logctx

import (
	"context"

	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

type loggerKey struct{}

func With(ctx context.Context, logger observability.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// From returns the scoped logger, or nil when none was stored.
func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(observability.Logger)
	return logger
}

// FromOr never returns nil.
func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if logger := From(ctx); logger != nil {
		return logger
	}
	if fallback != nil {
		return fallback
	}
	return observability.NopLogger()
}

// Enrich extends the scoped logger (or fallback) with fields and stores the
// result back on the returned context.
func Enrich(ctx context.Context, fallback observability.Logger, fields ...observability.Field) (context.Context, observability.Logger) {
	logger := FromOr(ctx, fallback)
	if len(fields) > 0 {
		logger = logger.With(fields...)
	}
	return With(ctx, logger), logger
}

// Scope starts a fresh scope from base for an inbound request or event: it
// ignores any logger already on ctx and adds the current trace identifiers.
func Scope(ctx context.Context, base observability.Logger, fields ...observability.Field) context.Context {
	if base == nil {
		base = observability.NopLogger()
	}
	all := append(append(make([]observability.Field, 0, len(fields)+2), fields...), observability.TraceFields(ctx)...)
	return With(ctx, base.With(all...))
}
