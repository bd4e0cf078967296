package service

import (
	"regexp"
	"strings"

	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	strutil "sigil/pkg/string"
)

// OAuth client identifiers are lowercase slugs, DNS-label style.
var clientIDPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// CreateClientCommand carries the inputs for client registration.
type CreateClientCommand struct {
	OrgID        id.OrgID
	OwnerID      id.UserID
	ClientID     string
	DisplayName  string
	Confidential bool
	RedirectURIs []string
	Scopes       []string
}

func (c *CreateClientCommand) Normalize() {
	if c == nil {
		return
	}
	c.ClientID = strings.ToLower(strings.TrimSpace(c.ClientID))
	c.DisplayName = strings.TrimSpace(c.DisplayName)
	strutil.TrimSlice(c.RedirectURIs)
	strutil.TrimSlice(c.Scopes)
}

func (c *CreateClientCommand) Validate() error {
	if c == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if c.OrgID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "organization ID is required")
	}
	if c.OwnerID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "owner ID is required")
	}
	if c.ClientID == "" {
		return dErrors.New(dErrors.CodeValidation, "client ID is required")
	}
	if len(c.ClientID) > 64 || !clientIDPattern.MatchString(c.ClientID) {
		return dErrors.New(dErrors.CodeValidation, "client ID must be a lowercase slug of at most 64 characters")
	}
	if c.DisplayName == "" {
		return dErrors.New(dErrors.CodeValidation, "display name is required")
	}
	if len(c.RedirectURIs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one redirect URI is required")
	}
	return nil
}
