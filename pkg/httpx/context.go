package httpx

import "context"

type ctxKey string

const (
	CtxKeyPrincipal ctxKey = "principal"
	CtxKeyToken     ctxKey = "bearer_token"
)

// WithPrincipal stores the authenticated principal and the raw bearer token.
func WithPrincipal[P any](ctx context.Context, p P, token string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyPrincipal, p)
	return context.WithValue(ctx, CtxKeyToken, token)
}

// PrincipalFrom returns the principal stored by AuthnMiddleware.
func PrincipalFrom[P any](ctx context.Context) (P, bool) {
	p, ok := ctx.Value(CtxKeyPrincipal).(P)
	return p, ok
}

// BearerTokenFrom returns the raw bearer token of an authenticated request.
func BearerTokenFrom(ctx context.Context) string {
	s, _ := ctx.Value(CtxKeyToken).(string)
	return s
}
