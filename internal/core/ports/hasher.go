package ports

import (
	"context"

	"github.com/taskforge/taskforge-api/internal/core/domain"
)

// PasswordHasher turns plaintext secrets into salted one-way hashes and
// verifies candidates against them. Implementations must salt per call (two
// hashes of the same plaintext differ) and compare in constant time.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// LoginThrottle limits consecutive failed logins per username. Implementations
// should fail open: a throttle backend outage must not take authentication down
// with it.
type LoginThrottle interface {
	TooManyFailures(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// AuditRecorder accepts audit events for asynchronous persistence. Record must
// not block the caller.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}
