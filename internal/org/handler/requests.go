package handler

import (
	"strings"
	"time"

	"sigil/internal/org/models"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/validation"
)

// HTTP Request DTOs - contain JSON tags for API serialization.
// These are converted to domain inputs before processing.

// SettingsPayload mirrors models.Settings on the wire. Session timeout is
// expressed in seconds.
type SettingsPayload struct {
	MaxUsers              int  `json:"max_users"`
	MaxClients            int  `json:"max_clients"`
	AllowSelfSignup       bool `json:"allow_self_signup"`
	SessionTimeoutSeconds int  `json:"session_timeout_seconds"`
}

func (p *SettingsPayload) ToSettings() *models.Settings {
	if p == nil {
		return nil
	}
	s := p.toSettingsValue()
	return &s
}

func (p *SettingsPayload) toSettingsValue() models.Settings {
	return models.Settings{
		MaxUsers:        p.MaxUsers,
		MaxClients:      p.MaxClients,
		AllowSelfSignup: p.AllowSelfSignup,
		SessionTimeout:  time.Duration(p.SessionTimeoutSeconds) * time.Second,
	}
}

type CreateOrganizationRequest struct {
	Name      string           `json:"name" validate:"required,notblank"`
	Subdomain string           `json:"subdomain" validate:"required,notblank"`
	Settings  *SettingsPayload `json:"settings,omitempty"`
}

func (r *CreateOrganizationRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Subdomain = strings.ToLower(strings.TrimSpace(r.Subdomain))
}

func (r *CreateOrganizationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type UpdateSettingsRequest struct {
	SettingsPayload
}

func (r *UpdateSettingsRequest) Normalize() {}

func (r *UpdateSettingsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return nil
}

// ToSettingsValue converts the payload to domain settings. Range checks
// happen in the aggregate.
func (r *UpdateSettingsRequest) ToSettingsValue() models.Settings {
	return r.toSettingsValue()
}
