package handler

import "github.com/taskforge/taskforge-api/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=4"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name"     validate:"required"`
	Surname  string `json:"surname"  validate:"required"`
	Role     string `json:"role"     validate:"omitempty,oneof=admin employee"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6,max=72"`
}

type updateIdentityRequest struct {
	Email    *string `json:"email"     validate:"omitempty,email"`
	Role     *string `json:"role"      validate:"omitempty,oneof=admin employee"`
	IsActive *bool   `json:"is_active"`
}

// Responses reuse domain.Identity directly: the password hash is tagged
// json:"-", so serialized identities are sanitized by construction.

type registerResponse struct {
	Identity *domain.Identity `json:"identity"`
}

type loginResponse struct {
	Identity *domain.Identity `json:"identity"`
	Token    string           `json:"token"`
}

type listIdentitiesResponse struct {
	Identities []domain.Identity `json:"identities"`
}
