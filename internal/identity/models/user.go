package models

import (
	"time"
	"unicode/utf8"

	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
)

const (
	minNameLength = 1
	maxNameLength = 100
)

// User is the aggregate root for an end-user account. All state changes go
// through its methods; validation precedes mutation in every operation so a
// failed call leaves the aggregate untouched.
type User struct {
	ID           id.UserID
	OrgID        id.OrgID
	Email        Email
	PasswordHash string // opaque bcrypt output, never derived from plaintext here
	FirstName    string
	LastName     string
	IsOrgAdmin   bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time

	events []Event
}

// NewUser registers a user under an organization. The caller supplies a fresh
// identifier, the hasher output, and the current time; the aggregate only
// validates and records the UserRegistered event.
func NewUser(
	userID id.UserID,
	orgID id.OrgID,
	email Email,
	passwordHash string,
	firstName string,
	lastName string,
	orgAdmin bool,
	now time.Time,
) (*User, error) {
	if orgID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "organization ID is required")
	}
	return newUser(userID, orgID, email, passwordHash, firstName, lastName, orgAdmin, now)
}

// NewUnassignedUser registers a user before its organization is known.
// This is a legacy import/seed path: exactly one AssignOrganization call is
// expected before the user becomes usable.
func NewUnassignedUser(
	userID id.UserID,
	email Email,
	passwordHash string,
	firstName string,
	lastName string,
	now time.Time,
) (*User, error) {
	return newUser(userID, id.OrgID{}, email, passwordHash, firstName, lastName, false, now)
}

func newUser(
	userID id.UserID,
	orgID id.OrgID,
	email Email,
	passwordHash string,
	firstName string,
	lastName string,
	orgAdmin bool,
	now time.Time,
) (*User, error) {
	if email.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email is required")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash is required")
	}
	if err := validateName(firstName, "first name"); err != nil {
		return nil, err
	}
	if err := validateName(lastName, "last name"); err != nil {
		return nil, err
	}

	u := &User{
		ID:           userID,
		OrgID:        orgID,
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		IsOrgAdmin:   orgAdmin,
		CreatedAt:    now,
	}
	u.record(UserRegistered{UserID: u.ID, Email: email.Value()})
	return u, nil
}

// UpdateProfile changes the user's display names. No event is recorded.
func (u *User) UpdateProfile(firstName, lastName string) error {
	if err := validateName(firstName, "first name"); err != nil {
		return err
	}
	if err := validateName(lastName, "last name"); err != nil {
		return err
	}
	u.FirstName = firstName
	u.LastName = lastName
	return nil
}

// RecordLogin stamps the login time and records a UserAuthenticated event.
// Password and email are not touched.
func (u *User) RecordLogin(now time.Time) {
	u.LastLoginAt = &now
	u.record(UserAuthenticated{UserID: u.ID, At: now})
}

// PromoteToOrgAdmin grants the organization-admin role. Idempotent.
func (u *User) PromoteToOrgAdmin() {
	u.IsOrgAdmin = true
}

// DemoteFromOrgAdmin revokes the organization-admin role. Idempotent.
func (u *User) DemoteFromOrgAdmin() {
	u.IsOrgAdmin = false
}

// AssignOrganization performs the one-time deferred tenant assignment for
// users created via NewUnassignedUser. The field is write-once: reassigning
// an already-set organization is an invariant violation.
func (u *User) AssignOrganization(orgID id.OrgID) error {
	if orgID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "organization ID is required")
	}
	if !u.OrgID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "organization already assigned")
	}
	u.OrgID = orgID
	return nil
}

// Events returns a copy of the buffered domain events. The buffer is not
// cleared on read; callers drain it with ClearEvents once per unit of work.
func (u *User) Events() []Event {
	out := make([]Event, len(u.events))
	copy(out, u.events)
	return out
}

// ClearEvents empties the event buffer after the caller has drained it.
func (u *User) ClearEvents() {
	u.events = nil
}

func (u *User) record(e Event) {
	u.events = append(u.events, e)
}

func validateName(name, label string) error {
	n := utf8.RuneCountInString(name)
	if n < minNameLength || n > maxNameLength {
		return dErrors.New(dErrors.CodeInvariantViolation, label+" must be between 1 and 100 characters")
	}
	return nil
}
