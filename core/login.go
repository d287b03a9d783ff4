package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/easyfin/easyfin/crypto"
	"github.com/easyfin/easyfin/db"
	"github.com/easyfin/easyfin/oauth2"
)

var (
	ErrAccountLocked          = errors.New("account is locked")
	ErrMissingCredentialInput = errors.New("no id token or access token provided")
	errInsecureSecret         = errors.New("refusing to sign with the fallback secret in production")
)

// PublicUser is the user as clients see it. The password hash is not part
// of it.
type PublicUser struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Role   string `json:"role"`
}

func newPublicUser(u *db.User) PublicUser {
	return PublicUser{
		ID:     u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Avatar: u.Avatar,
		Role:   u.Role,
	}
}

type authData struct {
	AccessToken string     `json:"accessToken"`
	User        PublicUser `json:"user"`
}

// writeAuthResponse writes the session token and the public user.
func writeAuthResponse(w http.ResponseWriter, status int, message, token string, user *db.User) {
	writeJsonWithData(w, status, JsonWithData{
		Message: message,
		Data: authData{
			AccessToken: token,
			User:        newPublicUser(user),
		},
	})
}

// displayName is the provider name or, lacking one, the local part of the
// email.
func displayName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}

// reconcileUser maps a provider identity to the local user, creating it with
// its default account and welcome notification on first login. A missing
// avatar is filled from the provider. Locked users get ErrAccountLocked.
func (a *App) reconcileUser(identity *oauth2.Identity) (*db.User, error) {
	email := normalizeEmail(identity.Email)
	if email == "" {
		return nil, oauth2.ErrMissingIdentityEmail
	}

	user, err := a.DbAuth().GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		var created bool
		user, created, err = a.createUserWithDefaults(db.User{
			Email:  email,
			Name:   displayName(identity.Name, email),
			Avatar: identity.Avatar,
			Role:   db.RoleUser,
			Active: true,
		})
		if err != nil {
			return nil, err
		}
		if created {
			a.Logger().Info("user created from google identity", "user_id", user.ID, "email_verified", identity.EmailVerified)
		}
	}

	if user.Avatar == "" && identity.Avatar != "" {
		changed, err := a.DbAuth().SetAvatarIfEmpty(user.ID, identity.Avatar)
		if err != nil {
			return nil, fmt.Errorf("failed to set avatar: %w", err)
		}
		if changed {
			user.Avatar = identity.Avatar
			a.Cache().Del(userCacheKey(user.ID))
		}
	}

	if !user.Active {
		return nil, ErrAccountLocked
	}
	return user, nil
}

// createUserWithDefaults inserts user with the configured onboarding
// records. created is false when the email already existed.
func (a *App) createUserWithDefaults(user db.User) (*db.User, bool, error) {
	onboarding := a.Config().Onboarding
	account := db.Account{
		Name:     onboarding.Account.Name,
		Type:     onboarding.Account.Type,
		Balance:  0,
		Currency: onboarding.Account.Currency,
		Icon:     onboarding.Account.Icon,
		Color:    onboarding.Account.Color,
	}
	welcome := db.Notification{
		Title:    onboarding.Notification.Title,
		Message:  onboarding.Notification.Message,
		Type:     onboarding.Notification.Type,
		Category: onboarding.Notification.Category,
	}

	u, created, err := a.DbAuth().CreateUserWithDefaults(user, account, welcome)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}
	if u == nil {
		return nil, false, fmt.Errorf("failed to create user: no user returned")
	}
	return u, created, nil
}

// issueSession signs a session token for user.
func (a *App) issueSession(user *db.User) (string, time.Time, error) {
	cfg := a.Config()
	secret, fallback := cfg.SigningSecret()
	if fallback {
		if cfg.IsProduction() {
			return "", time.Time{}, errInsecureSecret
		}
		a.Logger().Warn("signing session with the built-in fallback secret, set JWT_SECRET")
	}

	return crypto.NewSessionToken(user.ID, user.Email, user.Role, secret, cfg.Jwt.TokenDuration.Duration)
}

// loginWithIdentity runs reconciliation and session issuance.
func (a *App) loginWithIdentity(identity *oauth2.Identity) (string, *db.User, error) {
	user, err := a.reconcileUser(identity)
	if err != nil {
		return "", nil, err
	}

	token, _, err := a.issueSession(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue session: %w", err)
	}
	return token, user, nil
}

// providerText is the provider's own explanation carried by a verification
// error.
func providerText(err error) string {
	return strings.TrimPrefix(err.Error(), oauth2.ErrProviderVerificationFailed.Error()+": ")
}
