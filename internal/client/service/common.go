package service

import (
	"context"
	"errors"
	"log/slog"

	"sigil/internal/client/models"
	orgmodels "sigil/internal/org/models"
	"sigil/pkg/audit"
	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	adminmw "sigil/pkg/middleware/admin"
	request "sigil/pkg/middleware/request"
	"sigil/pkg/sentinel"
)

// Store interfaces define persistence contracts.

type ClientStore interface {
	Create(ctx context.Context, c *models.Client) error
	Update(ctx context.Context, c *models.Client) error
	FindByID(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	FindByOrgAndID(ctx context.Context, orgID id.OrgID, clientID id.ClientID) (*models.Client, error)
	FindByOrgAndClientID(ctx context.Context, orgID id.OrgID, slug string) (*models.Client, error)
	CountByOrg(ctx context.Context, orgID id.OrgID) (int, error)
	Delete(ctx context.Context, clientID id.ClientID) error
}

// OrgStore is a read-only view of the organization domain, used to verify
// the tenant exists and is active and to read per-tenant quotas.
type OrgStore interface {
	FindByID(ctx context.Context, orgID id.OrgID) (*orgmodels.Organization, error)
}

// ID validation helpers reduce repetition in service methods.

func requireClientID(clientID id.ClientID) error {
	if clientID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "client ID required")
	}
	return nil
}

func requireOrgID(orgID id.OrgID) error {
	if orgID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "organization ID required")
	}
	return nil
}

// Error wrapping helpers translate sentinel errors to domain errors.

func wrapClientErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "client not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}

func wrapOrgErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "organization not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}

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
func (s *Service) drainEvents(ctx context.Context, c *models.Client) {
	for _, event := range c.Events() {
		switch e := event.(type) {
		case models.ClientRegistered:
			s.auditEmitter.emit(ctx, "client.registered", e.ID.String(),
				"client_id", e.ClientID,
				"id", e.ID,
			)
		case models.ClientSecretRotated:
			s.auditEmitter.emit(ctx, "client.secret_rotated", e.ID.String(),
				"id", e.ID,
			)
		}
	}
	c.ClearEvents()
}
