package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/easyfin/easyfin/oauth2"
)

// AuthWithGoogleHandler logs in with a Google credential obtained on the
// client. Web sends the GSI credential, mobile an ID token or an access
// token. An ID token wins when several are present.
// Endpoint: POST /api/auth/google
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) AuthWithGoogleHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		WriteJsonError(w, resp)
		return
	}

	var req struct {
		AccessToken string `json:"accessToken"`
		Credential  string `json:"credential"`
		IdToken     string `json:"idToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	idToken := req.Credential
	if idToken == "" {
		idToken = req.IdToken
	}

	// lengths only, tokens are secrets
	a.Logger().Debug("google login request",
		"id_token_len", len(idToken),
		"access_token_len", len(req.AccessToken))

	identity, method, err := a.verifyGoogleCredential(r.Context(), idToken, req.AccessToken)
	if err != nil {
		if errors.Is(err, ErrMissingCredentialInput) {
			a.metrics.observe(method, outcomeBadRequest)
			WriteJsonError(w, errorMissingCredential)
			return
		}
		a.metrics.observe(method, outcomeProviderError)
		switch {
		case errors.Is(err, oauth2.ErrMissingIdentityEmail):
			WriteJsonError(w, errorMissingEmail)
		case errors.Is(err, oauth2.ErrProviderVerificationFailed) && method == methodGoogleIdToken:
			a.Logger().Info("google id token rejected", "error", err)
			WriteJsonError(w, newJsonError(http.StatusUnauthorized, CodeErrorInvalidIdToken, msgInvalidIdToken+providerText(err)))
		case errors.Is(err, oauth2.ErrProviderVerificationFailed):
			a.Logger().Info("google access token rejected", "error", err)
			WriteJsonError(w, errorInvalidAccessToken)
		default:
			a.Logger().Error("google verification failed", "error", err)
			WriteJsonError(w, errorLoginFailed)
		}
		return
	}

	token, user, err := a.loginWithIdentity(identity)
	if err != nil {
		a.writeLoginError(w, method, err)
		return
	}

	a.metrics.observe(method, outcomeSuccess)
	writeAuthResponse(w, http.StatusOK, msgLoginOk, token, user)
}

// verifyGoogleCredential resolves the identity behind an ID token or, lacking
// one, an access token. It also returns the metrics method label.
func (a *App) verifyGoogleCredential(ctx context.Context, idToken, accessToken string) (*oauth2.Identity, string, error) {
	switch {
	case idToken != "":
		identity, err := a.google().VerifyIDToken(ctx, idToken)
		return identity, methodGoogleIdToken, err
	case accessToken != "":
		identity, err := a.google().UserFromAccessToken(ctx, accessToken)
		return identity, methodGoogleAccessToken, err
	}
	return nil, methodGoogle, ErrMissingCredentialInput
}

// writeLoginError maps reconciliation and issuance errors.
func (a *App) writeLoginError(w http.ResponseWriter, method string, err error) {
	switch {
	case errors.Is(err, ErrAccountLocked):
		a.metrics.observe(method, outcomeLocked)
		WriteJsonError(w, errorAccountLocked)
	case errors.Is(err, oauth2.ErrMissingIdentityEmail):
		a.metrics.observe(method, outcomeProviderError)
		WriteJsonError(w, errorMissingEmail)
	default:
		a.metrics.observe(method, outcomeError)
		a.Logger().Error("login failed", "method", method, "error", err)
		WriteJsonError(w, errorLoginFailed)
	}
}
