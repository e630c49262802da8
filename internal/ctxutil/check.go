// Package ctxutil provides context utility functions.
package ctxutil

import "context"

// Canceled reports the context error once the context is done, nil otherwise.
// The overwrite loop calls it between chunks.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}

// Detached returns a context that keeps ctx's values but is never canceled.
// Persisting a certificate after an interrupted wipe runs under it so the
// failure is still recorded.
func Detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
