package service

import (
	"strings"

	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
)

// RegisterUserCommand carries the inputs for user registration.
// The plaintext password is hashed inside the service; it never reaches the
// aggregate or the store.
type RegisterUserCommand struct {
	OrgID     id.OrgID
	Email     string
	Password  string
	FirstName string
	LastName  string
	OrgAdmin  bool
}

func (c *RegisterUserCommand) Normalize() {
	if c == nil {
		return
	}
	c.Email = strings.TrimSpace(c.Email)
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
}

func (c *RegisterUserCommand) Validate() error {
	if c == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if c.OrgID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "organization ID is required")
	}
	if c.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	if len(c.Password) < 12 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 12 characters")
	}
	return nil
}

// LoginCommand carries the inputs for an admin login.
type LoginCommand struct {
	Subdomain string
	Email     string
	Password  string
}

func (c *LoginCommand) Normalize() {
	if c == nil {
		return
	}
	c.Subdomain = strings.ToLower(strings.TrimSpace(c.Subdomain))
	c.Email = strings.TrimSpace(c.Email)
}

func (c *LoginCommand) Validate() error {
	if c == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if c.Subdomain == "" {
		return dErrors.New(dErrors.CodeValidation, "subdomain is required")
	}
	if c.Email == "" || c.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}
