package core

import (
	"encoding/json"
	"net/http"

	"github.com/easyfin/easyfin/crypto"
)

// AuthWithPasswordHandler handles password-based authentication (login)
// Endpoint: POST /api/auth/login
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) AuthWithPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		WriteJsonError(w, resp)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		a.metrics.observe(methodPassword, outcomeBadRequest)
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	if err := ValidateEmail(email); err != nil {
		a.metrics.observe(methodPassword, outcomeBadRequest)
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	user, err := a.DbAuth().GetUserByEmail(email)
	if err != nil {
		a.metrics.observe(methodPassword, outcomeError)
		a.Logger().Error("failed to look up user", "error", err)
		WriteJsonError(w, errorAuthDatabaseError)
		return
	}

	// Google only accounts have no hash and never match.
	if user == nil || !crypto.CheckPassword(req.Password, user.Password) {
		a.metrics.observe(methodPassword, outcomeInvalid)
		WriteJsonError(w, errorInvalidCredentials)
		return
	}

	if !user.Active {
		a.metrics.observe(methodPassword, outcomeLocked)
		WriteJsonError(w, errorAccountLocked)
		return
	}

	token, _, err := a.issueSession(user)
	if err != nil {
		a.metrics.observe(methodPassword, outcomeError)
		a.Logger().Error("failed to issue session", "user_id", user.ID, "error", err)
		WriteJsonError(w, errorTokenGeneration)
		return
	}

	a.metrics.observe(methodPassword, outcomeSuccess)
	writeAuthResponse(w, http.StatusOK, msgLoginOk, token, user)
}
