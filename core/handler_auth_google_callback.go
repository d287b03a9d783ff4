package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/easyfin/easyfin/oauth2"
)

// Reasons sent back to the app in the error query parameter.
const (
	reasonNoCode          = "No code returned"
	reasonExchangeFailed  = "Failed to exchange code"
	reasonUserInfoFailed  = "Failed to get user info"
	reasonAccountLocked   = "Account is locked"
	reasonInternal        = "Internal Server Error"
	reasonInvalidRedirect = "Invalid redirect target"
)

// AuthGoogleCallbackHandler finishes the code flow started by
// AuthGoogleStartHandler. It always answers with a redirect to the app deep
// link, carrying either the session or an error reason.
// Endpoint: GET /api/auth/google/callback?code=&state=&error=
// Authenticated: No
func (a *App) AuthGoogleCallbackHandler(w http.ResponseWriter, r *http.Request) {
	cfg := a.Config()
	q := r.URL.Query()

	target := q.Get("state")
	if target == "" {
		target = cfg.Redirect.DefaultURI
	}
	if !redirectAllowed(cfg, target) {
		a.Logger().Info("google callback with unknown state", "state", cutQuery(target))
		a.metrics.observe(methodGoogleCode, outcomeBadRequest)
		redirectError(w, r, cfg.Redirect.DefaultURI, reasonInvalidRedirect)
		return
	}

	code := q.Get("code")
	if reason := q.Get("error"); reason != "" || code == "" {
		if reason == "" {
			reason = reasonNoCode
		}
		a.metrics.observe(methodGoogleCode, outcomeBadRequest)
		redirectError(w, r, target, reason)
		return
	}

	identity, err := a.google().ExchangeCode(r.Context(), code, a.callbackURL(r))
	if err != nil {
		a.metrics.observe(methodGoogleCode, outcomeProviderError)
		a.Logger().Info("google code exchange failed", "error", err)
		switch {
		case errors.Is(err, oauth2.ErrProviderExchangeFailed):
			redirectError(w, r, target, reasonExchangeFailed)
		case errors.Is(err, oauth2.ErrProviderVerificationFailed), errors.Is(err, oauth2.ErrMissingIdentityEmail):
			redirectError(w, r, target, reasonUserInfoFailed)
		default:
			redirectError(w, r, target, reasonInternal)
		}
		return
	}

	token, user, err := a.loginWithIdentity(identity)
	if err != nil {
		if errors.Is(err, ErrAccountLocked) {
			a.metrics.observe(methodGoogleCode, outcomeLocked)
			redirectError(w, r, target, reasonAccountLocked)
			return
		}
		a.metrics.observe(methodGoogleCode, outcomeError)
		a.Logger().Error("google callback login failed", "error", err)
		redirectError(w, r, target, reasonInternal)
		return
	}

	userJson, err := json.Marshal(newPublicUser(user))
	if err != nil {
		a.metrics.observe(methodGoogleCode, outcomeError)
		redirectError(w, r, target, reasonInternal)
		return
	}

	a.metrics.observe(methodGoogleCode, outcomeSuccess)
	redirectTo(w, r, withQuery(target, url.Values{
		"success": {"true"},
		"token":   {token},
		"user":    {string(userJson)},
	}))
}

func redirectError(w http.ResponseWriter, r *http.Request, target, reason string) {
	redirectTo(w, r, withQuery(target, url.Values{"error": {reason}}))
}
