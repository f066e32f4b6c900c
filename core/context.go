package core

import "context"

type ctxKey int

const tokenKey ctxKey = iota

// ContextWithToken returns a copy of ctx carrying the bearer token of the current caller.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the bearer token set by ContextWithToken, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}
