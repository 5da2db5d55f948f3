package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/lipiprint/lipiprint/internal/platform/httpx"
)

// Resolver loads the identity for a user id.
type Resolver interface {
	Identity(ctx context.Context, userID int64) (*Identity, error)
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// RequireUser authenticates the request and injects the identity into the
// context. Blocked accounts are refused.
func RequireUser(tokens *TokenStore, resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := tokens.Resolve(r.Context(), BearerToken(r))
			if err != nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			id, err := resolver.Identity(r.Context(), userID)
			if err != nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if id.Blocked {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), id)))
		})
	}
}

// RequireAdmin refuses non-admin identities. Must run after RequireUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserFromContext(r.Context())
		if !ok || !id.IsAdmin() {
			httpx.RespondError(w, httpx.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
