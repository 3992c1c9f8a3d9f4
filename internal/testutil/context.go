package testutil

import "context"

type bodyKey struct{}

func withBody(ctx context.Context, body map[string]any) context.Context {
	return context.WithValue(ctx, bodyKey{}, body)
}

// bodyFrom returns the JSON body decoded by the recording middleware.
func bodyFrom(ctx context.Context) map[string]any {
	v, _ := ctx.Value(bodyKey{}).(map[string]any)
	return v
}
