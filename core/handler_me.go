package core

import (
	"net/http"
)

// MeHandler returns the authenticated user.
// Endpoint: GET /api/auth/me
// Authenticated: Yes
func (a *App) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		WriteJsonError(w, errorJwtInvalidToken)
		return
	}

	writeJsonWithData(w, http.StatusOK, JsonWithData{
		Data: map[string]any{"user": newPublicUser(user)},
	})
}
