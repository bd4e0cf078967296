package service

import (
	"context"
	"log/slog"

	"sigil/internal/org/models"
	"sigil/pkg/audit"
	adminmw "sigil/pkg/middleware/admin"
	request "sigil/pkg/middleware/request"
)

// auditEmitter handles audit logging and event emission.
type auditEmitter struct {
	logger    *slog.Logger
	publisher audit.Publisher
}

func newAuditEmitter(logger *slog.Logger, publisher audit.Publisher) *auditEmitter {
	return &auditEmitter{logger: logger, publisher: publisher}
}

func (e *auditEmitter) emit(ctx context.Context, event, subject string, attributes ...any) {
	requestID := request.GetRequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if e.logger != nil {
		args := append(attributes, "event", event, "log_type", "audit")
		e.logger.InfoContext(ctx, event, args...)
	}
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Emit(ctx, audit.Event{
		Action:    event,
		Actor:     adminmw.GetAdminActorID(ctx),
		Subject:   subject,
		RequestID: requestID,
	}); err != nil && e.logger != nil {
		e.logger.ErrorContext(ctx, "failed to emit audit event",
			"event", event,
			"error", err,
		)
	}
}

// drainEvents publishes the aggregate's buffered domain events to the audit
// sink and clears the buffer. Called once per unit of work after persistence
// succeeds.
func (s *Service) drainEvents(ctx context.Context, org *models.Organization) {
	for _, event := range org.Events() {
		switch e := event.(type) {
		case models.OrgCreated:
			s.auditEmitter.emit(ctx, "organization.created", e.OrgID.String(),
				"org_id", e.OrgID,
				"subdomain", e.Subdomain,
			)
		case models.OrgDeactivated:
			s.auditEmitter.emit(ctx, "organization.deactivated", e.OrgID.String(),
				"org_id", e.OrgID,
			)
		case models.OrgReactivated:
			s.auditEmitter.emit(ctx, "organization.reactivated", e.OrgID.String(),
				"org_id", e.OrgID,
			)
		case models.OrgSettingsUpdated:
			s.auditEmitter.emit(ctx, "organization.settings_updated", e.OrgID.String(),
				"org_id", e.OrgID,
			)
		}
	}
	org.ClearEvents()
}
