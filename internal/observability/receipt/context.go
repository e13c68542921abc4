package receipt

import "context"

type ctxKey struct{}

// WithWriter installs the receipt writer for this invocation. Receipts
// stay disabled when no writer is installed.
func WithWriter(ctx context.Context, w Writer) context.Context {
	return context.WithValue(ctx, ctxKey{}, w)
}

// From returns the installed writer, or nil when receipts are disabled.
func From(ctx context.Context) Writer {
	w, _ := ctx.Value(ctxKey{}).(Writer)
	return w
}
