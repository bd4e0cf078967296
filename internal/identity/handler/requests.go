package handler

import (
	"strings"

	"sigil/internal/identity/service"
	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/validation"
)

// HTTP Request DTOs - contain JSON tags for API serialization.
// These are converted to service commands before processing.

type RegisterUserRequest struct {
	OrgID     string `json:"org_id" validate:"required,uuid"`
	Email     string `json:"email" validate:"required,notblank"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	OrgAdmin  bool   `json:"org_admin"`
}

func (r *RegisterUserRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

func (r *RegisterUserRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// ToCommand converts the HTTP request to a service command.
// Returns an error if the organization ID is invalid.
func (r *RegisterUserRequest) ToCommand() (*service.RegisterUserCommand, error) {
	orgID, err := id.ParseOrgID(r.OrgID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid organization id")
	}
	return &service.RegisterUserCommand{
		OrgID:     orgID,
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		OrgAdmin:  r.OrgAdmin,
	}, nil
}

type LoginRequest struct {
	Subdomain string `json:"subdomain"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.Subdomain = strings.ToLower(strings.TrimSpace(r.Subdomain))
	r.Email = strings.TrimSpace(r.Email)
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Subdomain == "" || r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "subdomain, email and password are required")
	}
	return nil
}

func (r *LoginRequest) ToCommand() *service.LoginCommand {
	return &service.LoginCommand{
		Subdomain: r.Subdomain,
		Email:     r.Email,
		Password:  r.Password,
	}
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r *UpdateProfileRequest) Normalize() {
	if r == nil {
		return
	}
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

func (r *UpdateProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return nil
}

type AssignOrganizationRequest struct {
	OrgID string `json:"org_id"`
}

func (r *AssignOrganizationRequest) Normalize() {
	if r == nil {
		return
	}
	r.OrgID = strings.TrimSpace(r.OrgID)
}

func (r *AssignOrganizationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.OrgID == "" {
		return dErrors.New(dErrors.CodeValidation, "org_id is required")
	}
	return nil
}
