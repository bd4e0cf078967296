// Package audit defines the contract between application services and the
// audit sink. Services emit events after each completed operation; delivery
// is best-effort and never blocks or fails the business operation.
package audit

import "context"

// Event is an audit fact emitted by an application service.
type Event struct {
	Action    string
	Actor     string
	Subject   string
	RequestID string
}

// Publisher delivers audit events to an external sink.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
