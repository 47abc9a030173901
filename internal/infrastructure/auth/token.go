package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/muhallimir/aims-commerce-chat/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrMissingIdentity  = errors.New("missing identity in claims")
	ErrIdentityMismatch = errors.New("token identity does not match identification event")
)

// Claims represents the connect-token claims minted by the storefront
// backend for a chat participant
type Claims struct {
	jwt.RegisteredClaims
	Identity    string `json:"identity"`
	DisplayName string `json:"display_name,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
}

// TokenVerifier validates connect tokens presented alongside a
// connect-identified event. It only verifies; token issuance belongs to the
// storefront backend's authentication layer.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a new TokenVerifier
func NewTokenVerifier(cfg config.AuthConfig) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Verify parses and validates the token and returns its claims
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	},
		jwt.WithIssuer(v.issuer),
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Identity == "" {
		return nil, ErrMissingIdentity
	}
	return claims, nil
}

// VerifyFor validates the token and checks it was minted for the identity
// the caller is claiming
func (v *TokenVerifier) VerifyFor(tokenString, identity string) (*Claims, error) {
	claims, err := v.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Identity != identity {
		return nil, ErrIdentityMismatch
	}
	return claims, nil
}

// Mint signs a connect token for the identity. It exists for tests and local
// tooling; production tokens come from the storefront backend.
func (v *TokenVerifier) Mint(identity, displayName string, isAdmin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   identity,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Identity:    identity,
		DisplayName: displayName,
		IsAdmin:     isAdmin,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
