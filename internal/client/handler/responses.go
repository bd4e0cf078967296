package handler

import (
	"time"

	"sigil/internal/client/models"
)

type ClientResponse struct {
	ID           string    `json:"id"`
	OrgID        string    `json:"org_id,omitempty"`
	OwnerID      string    `json:"owner_id"`
	ClientID     string    `json:"client_id"`
	DisplayName  string    `json:"display_name"`
	Type         string    `json:"type"`
	ClientSecret string    `json:"client_secret,omitempty"` // Only included on create/rotate
	RedirectURIs []string  `json:"redirect_uris"`
	Scopes       []string  `json:"scopes"`
	CreatedAt    time.Time `json:"created_at"`
}

type RotateSecretResponse struct {
	ClientSecret string `json:"client_secret"`
}

type ValidateRedirectURIResponse struct {
	Allowed bool `json:"allowed"`
}

// Response mapping functions - convert domain objects to HTTP DTOs

func toClientResponse(c *models.Client, secret string) *ClientResponse {
	resp := &ClientResponse{
		ID:           c.ID.String(),
		OwnerID:      c.OwnerID.String(),
		ClientID:     c.ClientID,
		DisplayName:  c.DisplayName,
		Type:         string(c.Type),
		ClientSecret: secret, // Empty string omitted due to omitempty tag
		RedirectURIs: c.RedirectURIValues(),
		Scopes:       c.AllowedScopes(),
		CreatedAt:    c.CreatedAt,
	}
	if !c.OrgID.IsNil() {
		resp.OrgID = c.OrgID.String()
	}
	return resp
}
