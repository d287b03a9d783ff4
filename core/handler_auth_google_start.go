package core

import (
	"net/http"
)

// AuthGoogleStartHandler sends the browser to the Google consent page. The
// app deep link to return to travels as the OAuth state.
// Endpoint: GET /api/auth/google/start?redirect_uri=
// Authenticated: No
func (a *App) AuthGoogleStartHandler(w http.ResponseWriter, r *http.Request) {
	cfg := a.Config()

	redirectURI := r.URL.Query().Get("redirect_uri")
	if redirectURI == "" {
		redirectURI = cfg.Redirect.DefaultURI
	}
	if !redirectAllowed(cfg, redirectURI) {
		a.Logger().Info("google start with unknown redirect uri", "redirect_uri", cutQuery(redirectURI))
		WriteJsonError(w, errorRedirectNotAllowed)
		return
	}

	if cfg.Google.ClientID == "" {
		a.Logger().Error("google client id is not configured")
		WriteJsonError(w, errorGoogleNotConfigured)
		return
	}

	redirectTo(w, r, a.google().AuthCodeURL(a.callbackURL(r), redirectURI))
}

// cutQuery keeps logs short for hostile input.
func cutQuery(s string) string {
	const max = 256
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
