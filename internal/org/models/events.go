package models

import id "sigil/pkg/domain"

// Domain events capture what happened in the organization domain. Aggregates
// append them to an owned buffer; the application layer drains the buffer
// once per unit of work (Events then ClearEvents) and publishes to the
// audit log. Aggregates never perform I/O themselves.

// Event marks a domain event recorded by an aggregate in this package.
type Event any

// OrgCreated is recorded when a new organization is provisioned.
type OrgCreated struct {
	OrgID     id.OrgID
	Subdomain string
}

// OrgDeactivated is recorded when an organization is taken out of service.
type OrgDeactivated struct {
	OrgID id.OrgID
}

// OrgReactivated is recorded when a deactivated organization is restored.
type OrgReactivated struct {
	OrgID id.OrgID
}

// OrgSettingsUpdated is recorded when per-tenant settings change.
type OrgSettingsUpdated struct {
	OrgID id.OrgID
}
