package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
	"github.com/camilovelasq/tienda-backend/internal/auth"
)

type contextKey int

const identityKey contextKey = iota

// identityFrom returns the verified caller stored by Authenticate, if any.
func identityFrom(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*auth.Identity)
	return identity, ok
}

// Authenticate verifies the bearer token and stores the caller identity in
// the request context.
func Authenticate(tm *auth.TokenManager, development bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				respondError(w, apperr.Unauthorized("missing bearer token"), development)
				return
			}

			identity, err := tm.Verify(token)
			if err != nil {
				respondError(w, err, development)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff gates a subtree to staff and admin callers. It must run after
// Authenticate.
func RequireStaff(development bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := identityFrom(r.Context())
			if !ok {
				respondError(w, apperr.Unauthorized("missing bearer token"), development)
				return
			}
			if !identity.Role.IsStaff() {
				respondError(w, apperr.Forbidden("staff role required"), development)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
