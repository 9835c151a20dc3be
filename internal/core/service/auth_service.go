package service

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/taskforge/taskforge-api/internal/core/domain"
	"github.com/taskforge/taskforge-api/internal/core/ports"
)

const (
	minUsernameLen = 4
	minPasswordLen = 6
	// bcrypt rejects inputs longer than 72 bytes.
	maxPasswordLen = 72
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// dummyHash is a valid bcrypt hash of a random string. Login verifies against
// it when the username is unknown so missing and existing users cost the same
// wall-clock time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService implements registration, login, and password changes. It owns
// the credential policy; persistence, hashing, and token minting are injected.
type AuthService struct {
	identities ports.IdentityRepository
	hasher     ports.PasswordHasher
	tokens     ports.TokenIssuer
	throttle   ports.LoginThrottle
	audit      ports.AuditRecorder
	logger     zerolog.Logger
}

// NewAuthService wires an AuthService. throttle and audit may be nil, in which
// case throttling and audit recording are skipped.
func NewAuthService(
	identities ports.IdentityRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	throttle ports.LoginThrottle,
	audit ports.AuditRecorder,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		identities: identities,
		hasher:     hasher,
		tokens:     tokens,
		throttle:   throttle,
		audit:      audit,
		logger:     logger,
	}
}

// Register validates the input, hashes the password, and creates the identity.
// The returned identity carries no plaintext and its hash is excluded from
// serialization.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Identity, error) {
	role, err := resolveRole(input.Role)
	if err != nil {
		return nil, err
	}
	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	now := time.Now().UTC()
	identity := &domain.Identity{
		Username:     input.Username,
		Email:        strings.ToLower(input.Email),
		Name:         input.Name,
		Surname:      input.Surname,
		PasswordHash: hashed,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.identities.Create(ctx, identity)
	if err != nil {
		return nil, err
	}

	s.record(domain.AuthEvent{
		Type:       domain.EventRegistered,
		IdentityID: created.ID,
		Username:   created.Username,
		At:         now,
	})
	return created, nil
}

// Login authenticates a username/password pair and mints a session token.
// Unknown user, wrong password, and deactivated account all yield the same
// ErrInvalidCredentials so callers cannot enumerate usernames.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttled(ctx, username) {
		s.record(domain.AuthEvent{
			Type:     domain.EventLoginFailed,
			Username: username,
			Reason:   "throttled",
			At:       time.Now().UTC(),
		})
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := s.identities.FindByUsername(ctx, username)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			s.hasher.Verify(password, dummyHash)
			return nil, s.failLogin(ctx, username, "unknown_user")
		}
		return nil, err
	}

	if !s.hasher.Verify(password, identity.PasswordHash) {
		return nil, s.failLogin(ctx, username, "wrong_password")
	}
	if !identity.IsActive {
		return nil, s.failLogin(ctx, username, "deactivated")
	}

	now := time.Now().UTC()
	if err := s.identities.RecordLogin(ctx, identity.ID, now); err != nil {
		// Login still succeeds; the timestamp is advisory.
		s.logger.Warn().Err(err).Str("identity_id", identity.ID).Msg("failed to record login time")
	} else {
		identity.LastLoginAt = &now
	}

	signed, err := s.tokens.Issue(identity.ID, identity.Role)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username); err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("throttle reset failed")
		}
	}
	s.record(domain.AuthEvent{
		Type:       domain.EventLoginSucceeded,
		IdentityID: identity.ID,
		Username:   username,
		At:         now,
	})

	return &ports.LoginResult{Identity: identity, Token: signed}, nil
}

// ChangePassword re-verifies the current password before storing a hash of the
// new one. A wrong current password is an InvalidCredentials failure, not a
// validation one.
func (s *AuthService) ChangePassword(ctx context.Context, identityID, current, next string) error {
	if err := validatePassword(next); err != nil {
		return err
	}

	identity, err := s.identities.FindByID(ctx, identityID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, identity.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hashed, err := s.hasher.Hash(next)
	if err != nil {
		return domain.NewInternalError(err)
	}
	if _, err := s.identities.Update(ctx, identityID, ports.IdentityUpdate{PasswordHash: &hashed}); err != nil {
		return err
	}
	return nil
}

func (s *AuthService) throttled(ctx context.Context, username string) bool {
	if s.throttle == nil {
		return false
	}
	tooMany, err := s.throttle.TooManyFailures(ctx, username)
	if err != nil {
		// Fail open: a throttle backend outage must not block logins.
		s.logger.Warn().Err(err).Str("username", username).Msg("throttle check failed")
		return false
	}
	return tooMany
}

func (s *AuthService) failLogin(ctx context.Context, username, reason string) error {
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, username); err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("throttle record failed")
		}
	}
	s.logger.Info().Str("username", username).Str("reason", reason).Msg("login rejected")
	s.record(domain.AuthEvent{
		Type:     domain.EventLoginFailed,
		Username: username,
		Reason:   reason,
		At:       time.Now().UTC(),
	})
	return domain.ErrInvalidCredentials
}

func (s *AuthService) record(event domain.AuthEvent) {
	if s.audit != nil {
		s.audit.Record(event)
	}
}

func resolveRole(raw string) (domain.Role, error) {
	if raw == "" {
		return domain.RoleEmployee, nil
	}
	role, err := domain.ParseRole(raw)
	if err != nil {
		return "", domain.NewValidationError("role must be one of: admin, employee")
	}
	return role, nil
}

func validateRegistration(input ports.RegisterInput) error {
	if len(input.Username) < minUsernameLen {
		return domain.NewValidationError("username must be at least 4 characters")
	}
	if !emailPattern.MatchString(input.Email) {
		return domain.NewValidationError("email must be a valid address")
	}
	if input.Name == "" || input.Surname == "" {
		return domain.NewValidationError("name and surname are required")
	}
	return validatePassword(input.Password)
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return domain.NewValidationError("password must be at least 6 characters")
	}
	if len(password) > maxPasswordLen {
		return domain.NewValidationError("password must be at most 72 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return domain.NewValidationError("password must contain at least one letter and one digit")
	}
	return nil
}
