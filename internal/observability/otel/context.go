package otel

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type ctxKey struct{}

// Handle bundles the tracer with its exporter shutdown. Commands start
// spans only when a handle is present; tracing stays off otherwise.
type Handle struct {
	Tracer   trace.Tracer
	Shutdown func(context.Context) error
}

// WithHandle installs the tracing handle for this invocation.
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, ctxKey{}, h)
}

// From returns the installed handle, or nil when tracing is disabled.
func From(ctx context.Context) *Handle {
	h, _ := ctx.Value(ctxKey{}).(*Handle)
	return h
}
