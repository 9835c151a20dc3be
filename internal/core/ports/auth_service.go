package ports

import (
	"context"

	"github.com/taskforge/taskforge-api/internal/core/domain"
)

// RegisterInput carries the fields of a registration request. Role may be
// empty, in which case the service assigns the employee default.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Name     string
	Surname  string
	Role     string
}

// LoginResult pairs the authenticated identity with its freshly minted
// session token.
type LoginResult struct {
	Identity *domain.Identity
	Token    string
}

// AuthService orchestrates registration, login, and password changes.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Identity, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, identityID, current, next string) error
}

// IdentityService exposes the administrative identity surface: listing,
// inspection, and the update path that re-validates uniqueness.
type IdentityService interface {
	List(ctx context.Context) ([]domain.Identity, error)
	Get(ctx context.Context, id string) (*domain.Identity, error)
	Update(ctx context.Context, id string, update IdentityUpdate) (*domain.Identity, error)
}
