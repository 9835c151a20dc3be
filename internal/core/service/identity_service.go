package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/taskforge/taskforge-api/internal/core/domain"
	"github.com/taskforge/taskforge-api/internal/core/ports"
)

// IdentityService is the administrative surface over identities: listing,
// inspection, role changes, and deactivation. Deactivation is terminal in the
// sense that the service never hard-deletes; an inactive identity simply fails
// every authentication and gate check from then on.
type IdentityService struct {
	identities ports.IdentityRepository
	logger     zerolog.Logger
}

func NewIdentityService(identities ports.IdentityRepository, logger zerolog.Logger) *IdentityService {
	return &IdentityService{identities: identities, logger: logger}
}

func (s *IdentityService) List(ctx context.Context) ([]domain.Identity, error) {
	return s.identities.List(ctx)
}

func (s *IdentityService) Get(ctx context.Context, id string) (*domain.Identity, error) {
	return s.identities.FindByID(ctx, id)
}

// Update applies a partial update. Email changes are normalized and re-checked
// for uniqueness at the storage layer; role changes must stay inside the
// closed role set.
func (s *IdentityService) Update(ctx context.Context, id string, update ports.IdentityUpdate) (*domain.Identity, error) {
	if update.Email != nil {
		normalized := strings.ToLower(*update.Email)
		if !emailPattern.MatchString(normalized) {
			return nil, domain.NewValidationError("email must be a valid address")
		}
		update.Email = &normalized
	}
	if update.Role != nil && !update.Role.Valid() {
		return nil, domain.NewValidationError("role must be one of: admin, employee")
	}

	updated, err := s.identities.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	if update.IsActive != nil && !*update.IsActive {
		s.logger.Info().Str("identity_id", id).Msg("identity deactivated")
	}
	return updated, nil
}
