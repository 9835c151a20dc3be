package ports

import (
	"context"
	"time"

	"github.com/taskforge/taskforge-api/internal/core/domain"
)

// IdentityUpdate is a partial update of an identity. Nil fields are left
// untouched; a changed email goes back through the uniqueness check.
type IdentityUpdate struct {
	Email        *string
	Role         *domain.Role
	IsActive     *bool
	PasswordHash *string
}

// IdentityRepository is the persistence boundary for identities. Create must
// be atomic with respect to the uniqueness check (insert-if-absent), so two
// concurrent registrations of the same username cannot both succeed.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	FindByUsername(ctx context.Context, username string) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	List(ctx context.Context) ([]domain.Identity, error)
	Update(ctx context.Context, id string, update IdentityUpdate) (*domain.Identity, error)

	// RecordLogin advances lastLoginAt. Last-writer-wins; the stored value
	// never moves backwards.
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// AuditRepository persists authentication audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuthEvent) error
}
