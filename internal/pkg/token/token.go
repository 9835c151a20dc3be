// Package token issues and verifies the stateless session tokens used for
// authentication. A token is an HS256-signed JWT carrying the identity id and
// role; validity is derived purely from the signature and timestamps, never
// from server-side state.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskforge/taskforge-api/internal/core/domain"
	"github.com/taskforge/taskforge-api/internal/core/ports"
)

// Verification failures, from coarsest to most specific. Callers that face
// clients should collapse all three into a single unauthenticated response.
var (
	ErrMalformed    = errors.New("token malformed")
	ErrBadSignature = errors.New("token signature invalid")
	ErrExpired      = errors.New("token expired")
)

// Manager implements ports.TokenIssuer and ports.TokenVerifier over a shared
// symmetric secret. The secret is set once at construction and never mutated,
// so a single Manager is safe for concurrent use.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewManager builds a Manager signing with secret and issuing tokens that
// expire exactly ttl after their issue time. The ttl is used as given; a zero
// or negative ttl mints tokens that are already expired. The 24h operational
// default lives in the config layer.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue mints a signed token asserting identityID and role from now until
// now+ttl.
func (m *Manager) Issue(identityID string, role domain.Role) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. Failures map to
// exactly one of ErrMalformed, ErrBadSignature, or ErrExpired; the signature
// check inside jwt/v5 is a constant-time HMAC comparison.
func (m *Manager) Verify(tokenString string) (*ports.TokenClaims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrMalformed
		}
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, ErrMalformed
	}
	if claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}

	return &ports.TokenClaims{
		IdentityID: claims.Subject,
		Role:       role,
		IssuedAt:   claims.IssuedAt.Time,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}
