package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// MinKeyLength is the minimum length for HMAC-SHA256 signing keys in production.
	// 32 bytes (256 bits) matches the output size of the hash.
	MinKeyLength = 32

	// SessionTokenDuration is the default lifetime of a session token.
	SessionTokenDuration = 7 * 24 * time.Hour
)

var (
	// ErrJwtTokenExpired is returned when the token has expired
	ErrJwtTokenExpired = errors.New("token expired")
	// ErrJwtInvalidToken is returned when the token is invalid
	ErrJwtInvalidToken = errors.New("invalid token")
	// ErrJwtInvalidSignature is returned when the signature does not verify
	// or the token is signed with something other than HS256
	ErrJwtInvalidSignature = errors.New("invalid token signature")
	// ErrJwtInvalidSecretLength is returned when no signing secret is given
	ErrJwtInvalidSecretLength = errors.New("invalid secret length")
	// ErrInvalidClaimFormat is returned when a required claim is missing
	ErrInvalidClaimFormat = errors.New("invalid claim format")
)

// SessionClaims are the claims carried by a session token.
// The json names are shared with the mobile and web clients.
type SessionClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Validate implements jwt.ClaimsValidator. The parser checks exp and iat
// values before calling it; presence of our own claims is enforced here.
func (c SessionClaims) Validate() error {
	if c.IssuedAt == nil {
		return fmt.Errorf("%w: missing iat claim", ErrInvalidClaimFormat)
	}
	if c.UserID == "" {
		return fmt.Errorf("%w: missing userId", ErrInvalidClaimFormat)
	}
	if c.Email == "" {
		return fmt.Errorf("%w: missing email", ErrInvalidClaimFormat)
	}
	return nil
}

// NewSessionToken signs a session token for the given user with HS256.
// It returns the token and its expiry time.
func NewSessionToken(userID, email, role string, secret []byte, duration time.Duration) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, ErrJwtInvalidSecretLength
	}

	now := time.Now()
	expiresAt := now.Add(duration)
	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseSessionToken verifies the signature and expiry of a session token and
// returns its claims. Only HS256 is accepted.
func ParseSessionToken(token string, secret []byte) (*SessionClaims, error) {
	if len(secret) == 0 {
		return nil, ErrJwtInvalidSecretLength
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	claims := &SessionClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrJwtTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrJwtInvalidSignature
		}
		return nil, fmt.Errorf("%w: %w", ErrJwtInvalidToken, err)
	}

	if !parsed.Valid {
		return nil, ErrJwtInvalidToken
	}
	return claims, nil
}
