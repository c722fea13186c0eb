// Package auth issues and validates the bearer tokens that protect the admin
// API. There are no end-user accounts; tokens are minted for operators by the
// token tool and carry a role claim.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is how long issued tokens stay valid. Admin tokens are
// minted per working session, not stored long-term.
const DefaultTokenTTL = 8 * time.Hour

// Roles carried in the token's role claim.
const (
	// RoleAdmin can manage treks and trek data.
	RoleAdmin = "admin"

	// RoleViewer can read admin-only status but not write.
	RoleViewer = "viewer"
)

// Token errors.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// Claims are the claims in an admin API token.
type Claims struct {
	jwt.RegisteredClaims

	// Role is the operator's role.
	Role string `json:"role"`
}

// IsAdmin reports whether the claims grant write access.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// TokenServiceConfig holds configuration for the token service.
type TokenServiceConfig struct {
	// SigningKey is the HS256 secret (required).
	SigningKey string

	// Issuer is the issuer claim (e.g. "https://api.trekatlas.io").
	Issuer string

	// Audience is the audience claim (e.g. "trekatlas-admin").
	Audience string

	// TokenTTL overrides the default token lifetime.
	TokenTTL time.Duration
}

// TokenService signs and validates admin tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
	audience   string
	ttl        time.Duration
}

// NewTokenService creates a token service.
func NewTokenService(cfg TokenServiceConfig) *TokenService {
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenService{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		ttl:        ttl,
	}
}

// Generate mints a token for an operator with the given role.
func (s *TokenService) Generate(subject, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate parses a token and returns its claims.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
