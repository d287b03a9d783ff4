package core

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/easyfin/easyfin/cache"
	"github.com/easyfin/easyfin/config"
	"github.com/easyfin/easyfin/crypto"
	"github.com/easyfin/easyfin/db"
)

// Authenticator defines the interface for authentication operations
type Authenticator interface {
	// Authenticate returns the active user behind the request's bearer
	// token. On failure the jsonResponse is ready to be written.
	Authenticate(r *http.Request) (*db.User, jsonResponse, error)
}

// DefaultAuthenticator verifies session tokens and re-reads the user, so a
// lock applies to tokens already issued. Users are cached for
// Cache.UserTTL.
type DefaultAuthenticator struct {
	dbAuth         db.DbAuth
	cache          cache.Cache[any]
	logger         *slog.Logger
	configProvider *config.Provider
}

// NewDefaultAuthenticator creates a new DefaultAuthenticator instance
func NewDefaultAuthenticator(dbAuth db.DbAuth, c cache.Cache[any], logger *slog.Logger, configProvider *config.Provider) *DefaultAuthenticator {
	return &DefaultAuthenticator{
		dbAuth:         dbAuth,
		cache:          c,
		logger:         logger,
		configProvider: configProvider,
	}
}

// userCacheKey is where authenticated users are cached.
func userCacheKey(id string) string {
	return "user:" + id
}

// Authenticate implements the Authenticator interface
func (a *DefaultAuthenticator) Authenticate(r *http.Request) (*db.User, jsonResponse, error) {
	errAuth := errors.New("Auth error")

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errorNoAuthHeader, errAuth
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || tokenString == "" {
		return nil, errorInvalidTokenFormat, errAuth
	}

	cfg := a.configProvider.Get()
	secret, _ := cfg.SigningSecret()
	claims, err := crypto.ParseSessionToken(tokenString, secret)
	if err != nil {
		if errors.Is(err, crypto.ErrJwtTokenExpired) {
			return nil, errorJwtTokenExpired, err
		}
		return nil, errorJwtInvalidToken, err
	}

	user, err := a.user(claims.UserID, cfg)
	if err != nil {
		a.logger.Error("failed to load user for session", "user_id", claims.UserID, "error", err)
		return nil, errorAuthDatabaseError, err
	}
	if user == nil {
		return nil, errorJwtInvalidToken, errAuth
	}

	if !user.Active {
		return nil, errorAccountLocked, ErrAccountLocked
	}

	return user, jsonResponse{}, nil
}

func (a *DefaultAuthenticator) user(id string, cfg *config.Config) (*db.User, error) {
	key := userCacheKey(id)
	if a.cache != nil {
		if v, ok := a.cache.Get(key); ok {
			if u, ok := v.(*db.User); ok {
				return u, nil
			}
		}
	}

	user, err := a.dbAuth.GetUserById(id)
	if err != nil || user == nil {
		return nil, err
	}

	if a.cache != nil && cfg.Cache.UserTTL.Duration > 0 {
		a.cache.SetWithTTL(key, user, 1, cfg.Cache.UserTTL.Duration)
	}
	return user, nil
}
