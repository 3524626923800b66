package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
)

type contextKey string

const identityKey contextKey = "bcms.identity"

// RequireAuth resolves the bearer token into an Identity and stores it
// on the request context. Requests without a valid token get 401.
func RequireAuth(service bcms.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, err := service.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				respondError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin callers. It must run inside RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !identityFrom(r.Context()).Admin {
			respondError(w, r, bcms.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// identityFrom returns the Identity stored by RequireAuth, or the zero
// Identity outside of it.
func identityFrom(ctx context.Context) bcms.Identity {
	ident, _ := ctx.Value(identityKey).(bcms.Identity)
	return ident
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
