package core

import (
	"encoding/json"
	"net/http"

	"github.com/easyfin/easyfin/crypto"
	"github.com/easyfin/easyfin/db"
)

// RegisterWithPasswordHandler creates an account with email and password.
// New users get the same default account and welcome notification as on a
// first Google login.
// Endpoint: POST /api/auth/register
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) RegisterWithPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		WriteJsonError(w, resp)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		a.metrics.observe(methodRegister, outcomeBadRequest)
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	if err := ValidateEmail(email); err != nil {
		a.metrics.observe(methodRegister, outcomeBadRequest)
		WriteJsonError(w, errorInvalidRequest)
		return
	}

	if len(req.Password) < crypto.MinPasswordLength {
		a.metrics.observe(methodRegister, outcomeBadRequest)
		WriteJsonError(w, errorPasswordComplexity)
		return
	}

	if len(req.Password) > crypto.MaxPasswordLength {
		a.metrics.observe(methodRegister, outcomeBadRequest)
		WriteJsonError(w, errorPasswordTooLong)
		return
	}

	hash, err := crypto.GenerateHash(req.Password)
	if err != nil {
		a.metrics.observe(methodRegister, outcomeError)
		a.Logger().Error("failed to hash password", "error", err)
		WriteJsonError(w, errorRegistrationFailed)
		return
	}

	user, created, err := a.createUserWithDefaults(db.User{
		Email:    email,
		Name:     displayName(req.Name, email),
		Password: hash,
		Role:     db.RoleUser,
		Active:   true,
	})
	if err != nil {
		a.metrics.observe(methodRegister, outcomeError)
		a.Logger().Error("registration failed", "error", err)
		WriteJsonError(w, errorRegistrationFailed)
		return
	}

	if !created {
		a.metrics.observe(methodRegister, outcomeConflict)
		WriteJsonError(w, errorEmailConflict)
		return
	}

	token, _, err := a.issueSession(user)
	if err != nil {
		a.metrics.observe(methodRegister, outcomeError)
		a.Logger().Error("failed to issue session", "user_id", user.ID, "error", err)
		WriteJsonError(w, errorTokenGeneration)
		return
	}

	a.metrics.observe(methodRegister, outcomeSuccess)
	writeAuthResponse(w, http.StatusCreated, msgRegisterOk, token, user)
}
