package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// ResolveFunc turns a bearer token into a principal.
type ResolveFunc[P any] func(ctx context.Context, token string) (P, error)

// ErrorFunc writes the response for a failed resolution.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// AuthnMiddleware requires an "Authorization: Bearer <token>" header, resolves
// it with resolve and injects the principal into the request context.
// onError handles resolver failures; nil means a plain 401.
func AuthnMiddleware[P any](resolve ResolveFunc[P], onError ErrorFunc) Middleware {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, _ error) {
			WriteBearerError(w, "invalid_token", "Not authorized")
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := BearerToken(r)
			if !ok {
				WriteBearerError(w, "invalid_request", "Not authorized")
				return
			}

			p, err := resolve(ctx, raw)
			if err != nil {
				slogx.FromContext(ctx).Info("bearer token rejected", "err", err)
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, p, raw)))
		})
	}
}

// BearerToken extracts the token of an Authorization: Bearer header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WriteBearerError writes an RFC 6750 challenge with a JSON {message} body.
func WriteBearerError(w http.ResponseWriter, code, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="`+code+`"`)
	WriteMessage(w, http.StatusUnauthorized, message)
}
