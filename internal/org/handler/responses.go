package handler

import (
	"time"

	"sigil/internal/org/models"
)

type OrganizationResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Subdomain string           `json:"subdomain"`
	Status    models.OrgStatus `json:"status"`
	Settings  SettingsPayload  `json:"settings"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type OrgDetailsResponse struct {
	OrganizationResponse
	UserCount   int `json:"user_count"`
	ClientCount int `json:"client_count"`
}

// Response mapping functions - convert domain objects to HTTP DTOs

func toOrganizationResponse(o *models.Organization) *OrganizationResponse {
	return &OrganizationResponse{
		ID:        o.ID.String(),
		Name:      o.Name,
		Subdomain: o.Subdomain,
		Status:    o.Status,
		Settings: SettingsPayload{
			MaxUsers:              o.Settings.MaxUsers,
			MaxClients:            o.Settings.MaxClients,
			AllowSelfSignup:       o.Settings.AllowSelfSignup,
			SessionTimeoutSeconds: int(o.Settings.SessionTimeout / time.Second),
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toOrgDetailsResponse(d *models.OrgDetails) *OrgDetailsResponse {
	return &OrgDetailsResponse{
		OrganizationResponse: *toOrganizationResponse(d.Organization),
		UserCount:            d.UserCount,
		ClientCount:          d.ClientCount,
	}
}
