package models

import (
	"regexp"
	"time"

	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
)

type OrgStatus string

const (
	OrgStatusActive   OrgStatus = "active"
	OrgStatusInactive OrgStatus = "inactive"
)

// subdomainPattern: lowercase DNS label, no leading/trailing hyphen.
var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// Settings holds per-tenant limits and toggles.
type Settings struct {
	MaxUsers        int
	MaxClients      int
	AllowSelfSignup bool
	SessionTimeout  time.Duration
}

// DefaultSettings are applied when an organization is created without
// explicit settings.
func DefaultSettings() Settings {
	return Settings{
		MaxUsers:        50,
		MaxClients:      10,
		AllowSelfSignup: false,
		SessionTimeout:  30 * time.Minute,
	}
}

func (s Settings) Validate() error {
	if s.MaxUsers <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "max users must be positive")
	}
	if s.MaxClients <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "max clients must be positive")
	}
	if s.SessionTimeout <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "session timeout must be positive")
	}
	return nil
}

// Organization is the tenant isolation boundary: every user and client
// belongs to exactly one organization, and the surrounding query layer
// applies an implicit organization filter on every read and write.
type Organization struct {
	ID        id.OrgID
	Name      string
	Subdomain string // unique across the platform
	Settings  Settings
	Status    OrgStatus
	CreatedAt time.Time
	UpdatedAt time.Time

	events []Event
}

func NewOrganization(orgID id.OrgID, name, subdomain string, settings Settings, now time.Time) (*Organization, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "organization name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "organization name must be 128 characters or less")
	}
	if subdomain == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "subdomain cannot be empty")
	}
	if len(subdomain) > 63 || !subdomainPattern.MatchString(subdomain) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "subdomain must be a valid lowercase DNS label")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	o := &Organization{
		ID:        orgID,
		Name:      name,
		Subdomain: subdomain,
		Settings:  settings,
		Status:    OrgStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.record(OrgCreated{OrgID: orgID, Subdomain: subdomain})
	return o, nil
}

func (o *Organization) IsActive() bool {
	return o.Status == OrgStatusActive
}

// Deactivate transitions the organization to inactive status.
// Returns an error if the organization is already inactive.
func (o *Organization) Deactivate(now time.Time) error {
	if !o.IsActive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "organization is already inactive")
	}
	o.Status = OrgStatusInactive
	o.UpdatedAt = now
	o.record(OrgDeactivated{OrgID: o.ID})
	return nil
}

// Reactivate transitions the organization to active status.
// Returns an error if the organization is already active.
func (o *Organization) Reactivate(now time.Time) error {
	if o.IsActive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "organization is already active")
	}
	o.Status = OrgStatusActive
	o.UpdatedAt = now
	o.record(OrgReactivated{OrgID: o.ID})
	return nil
}

// UpdateSettings replaces the per-tenant settings after validation.
func (o *Organization) UpdateSettings(settings Settings, now time.Time) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	o.Settings = settings
	o.UpdatedAt = now
	o.record(OrgSettingsUpdated{OrgID: o.ID})
	return nil
}

// Events returns a copy of the pending domain events.
func (o *Organization) Events() []Event {
	out := make([]Event, len(o.events))
	copy(out, o.events)
	return out
}

// ClearEvents empties the event buffer after the caller has drained it.
func (o *Organization) ClearEvents() {
	o.events = nil
}

func (o *Organization) record(e Event) {
	o.events = append(o.events, e)
}

// OrgDetails aggregates organization metadata with counts for admin dashboards.
type OrgDetails struct {
	Organization *Organization
	UserCount    int
	ClientCount  int
}
