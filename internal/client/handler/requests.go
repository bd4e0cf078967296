package handler

import (
	"strings"

	"sigil/internal/client/service"
	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	strutil "sigil/pkg/string"
	"sigil/pkg/validation"
)

// HTTP Request DTOs - contain JSON tags for API serialization.
// These are converted to service commands before processing.

type CreateClientRequest struct {
	OrgID        string   `json:"org_id" validate:"required,uuid"`
	OwnerID      string   `json:"owner_id" validate:"required,uuid"`
	ClientID     string   `json:"client_id" validate:"required,notblank"`
	DisplayName  string   `json:"display_name" validate:"required,notblank"`
	Confidential bool     `json:"confidential"`
	RedirectURIs []string `json:"redirect_uris" validate:"required,min=1"`
	Scopes       []string `json:"scopes"`
}

func (r *CreateClientRequest) Normalize() {
	if r == nil {
		return
	}
	r.ClientID = strings.ToLower(strings.TrimSpace(r.ClientID))
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	strutil.TrimSlice(r.RedirectURIs)
	strutil.TrimSlice(r.Scopes)
}

func (r *CreateClientRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// ToCommand converts the HTTP request to a service command.
// Returns an error if the organization or owner ID is invalid.
func (r *CreateClientRequest) ToCommand() (*service.CreateClientCommand, error) {
	orgID, err := id.ParseOrgID(r.OrgID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid organization id")
	}
	ownerID, err := id.ParseUserID(r.OwnerID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid owner id")
	}
	return &service.CreateClientCommand{
		OrgID:        orgID,
		OwnerID:      ownerID,
		ClientID:     r.ClientID,
		DisplayName:  r.DisplayName,
		Confidential: r.Confidential,
		RedirectURIs: r.RedirectURIs,
		Scopes:       r.Scopes,
	}, nil
}

type UpdateDisplayNameRequest struct {
	DisplayName string `json:"display_name"`
}

func (r *UpdateDisplayNameRequest) Normalize() {
	if r == nil {
		return
	}
	r.DisplayName = strings.TrimSpace(r.DisplayName)
}

func (r *UpdateDisplayNameRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.DisplayName == "" {
		return dErrors.New(dErrors.CodeValidation, "display_name is required")
	}
	return nil
}

type RedirectURIRequest struct {
	RedirectURI string `json:"redirect_uri"`
}

func (r *RedirectURIRequest) Normalize() {
	if r == nil {
		return
	}
	r.RedirectURI = strings.TrimSpace(r.RedirectURI)
}

func (r *RedirectURIRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.RedirectURI == "" {
		return dErrors.New(dErrors.CodeValidation, "redirect_uri is required")
	}
	return nil
}

type ValidateRedirectURIRequest struct {
	ClientID    string `json:"client_id"`
	RedirectURI string `json:"redirect_uri"`
}

// Normalize trims the client slug only. The candidate URI is matched
// exactly as presented, so it is deliberately left untouched.
func (r *ValidateRedirectURIRequest) Normalize() {
	if r == nil {
		return
	}
	r.ClientID = strings.ToLower(strings.TrimSpace(r.ClientID))
}

func (r *ValidateRedirectURIRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.ClientID == "" {
		return dErrors.New(dErrors.CodeValidation, "client_id is required")
	}
	if r.RedirectURI == "" {
		return dErrors.New(dErrors.CodeValidation, "redirect_uri is required")
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
