package domain

import "context"

type authTokenKey struct{}

// WithAuthToken returns a context carrying the caller's auth token.
// Remote calls made with this context authenticate as the caller.
func WithAuthToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, authTokenKey{}, token)
}

// AuthToken returns the caller's auth token, or "" if none was attached.
func AuthToken(ctx context.Context) string {
	token, _ := ctx.Value(authTokenKey{}).(string)
	return token
}
