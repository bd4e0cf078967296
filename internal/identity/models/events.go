package models

import (
	"time"

	id "sigil/pkg/domain"
)

// Domain events capture what happened in the identity domain. Aggregates
// append them to an owned buffer; the application layer drains the buffer
// once per unit of work (Events then ClearEvents) and publishes to the
// audit log. Aggregates never perform I/O themselves.

// Event marks a domain event recorded by an aggregate in this package.
type Event any

// UserRegistered is recorded when a new user account is created.
type UserRegistered struct {
	UserID id.UserID
	Email  string
}

// UserAuthenticated is recorded when a user successfully logs in.
type UserAuthenticated struct {
	UserID id.UserID
	At     time.Time
}
