package models

import id "sigil/pkg/domain"

// Domain events recorded by the Client aggregate. The service layer drains
// them once per unit of work and publishes to the audit log; the aggregate
// itself performs no I/O.

// Event marks a domain event recorded by an aggregate in this package.
type Event any

// ClientRegistered is recorded when a new OAuth client is created.
type ClientRegistered struct {
	ClientID string // the human-derived slug
	ID       id.ClientID
}

// ClientSecretRotated is recorded when a confidential client's secret is replaced.
type ClientSecretRotated struct {
	ID id.ClientID
}
