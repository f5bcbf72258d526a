package proxy

import (
	"context"
)

type contextKey struct {
	name string
}

var trustedKey = &contextKey{"trusted"}

// WithTrusted returns a copy of ctx carrying t.
func WithTrusted(ctx context.Context, t Trusted) context.Context {
	return context.WithValue(ctx, trustedKey, t)
}

// FromContext returns the Trusted value stored by the middleware.
func FromContext(ctx context.Context) (Trusted, bool) {
	t, ok := ctx.Value(trustedKey).(Trusted)
	return t, ok
}
