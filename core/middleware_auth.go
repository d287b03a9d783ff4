package core

import (
	"context"
	"net/http"

	"github.com/easyfin/easyfin/db"
)

type contextKey string

const UserKey contextKey = "user"

// UserFromContext returns the user stored by RequireAuth.
func UserFromContext(ctx context.Context) (*db.User, bool) {
	u, ok := ctx.Value(UserKey).(*db.User)
	return u, ok && u != nil
}

// RequireAuth lets only requests with a valid session through and stores
// the user in the request context.
func (a *App) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, resp, err := a.Auth().Authenticate(r)
		if err != nil {
			WriteJsonError(w, resp)
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after RequireAuth.
func (a *App) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			WriteJsonError(w, errorJwtInvalidToken)
			return
		}
		if !user.IsAdmin() {
			WriteJsonError(w, errorForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
