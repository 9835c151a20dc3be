package ports

import (
	"time"

	"github.com/taskforge/taskforge-api/internal/core/domain"
)

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	IdentityID string
	Role       domain.Role
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// TokenIssuer mints signed, time-bounded session tokens. Tokens are stateless:
// the server keeps no reference to them after issuance.
type TokenIssuer interface {
	Issue(identityID string, role domain.Role) (string, error)
}

// TokenVerifier checks a token's structure, signature, and expiry, returning
// the embedded claims on success. Verification is pure and safe to run
// concurrently.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}
