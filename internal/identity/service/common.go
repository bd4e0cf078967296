package service

import (
	"context"
	"errors"
	"log/slog"

	"sigil/internal/identity/models"
	orgmodels "sigil/internal/org/models"
	"sigil/pkg/audit"
	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	adminmw "sigil/pkg/middleware/admin"
	request "sigil/pkg/middleware/request"
	"sigil/pkg/sentinel"
)

// Store interfaces define persistence contracts.

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByOrgAndID(ctx context.Context, orgID id.OrgID, userID id.UserID) (*models.User, error)
	FindByOrgAndEmail(ctx context.Context, orgID id.OrgID, email string) (*models.User, error)
	CountByOrg(ctx context.Context, orgID id.OrgID) (int, error)
	Delete(ctx context.Context, userID id.UserID) error
}

// OrgStore is a read-only view of the organization domain, used to verify
// the tenant exists and is active and to read per-tenant settings.
type OrgStore interface {
	FindByID(ctx context.Context, orgID id.OrgID) (*orgmodels.Organization, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*orgmodels.Organization, error)
}

// ID validation helpers reduce repetition in service methods.

func requireUserID(userID id.UserID) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "user ID required")
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

func wrapUserErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
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
func (s *Service) drainEvents(ctx context.Context, u *models.User) {
	for _, event := range u.Events() {
		switch e := event.(type) {
		case models.UserRegistered:
			s.auditEmitter.emit(ctx, "user.registered", e.UserID.String(),
				"user_id", e.UserID,
				"email", e.Email,
			)
		case models.UserAuthenticated:
			s.auditEmitter.emit(ctx, "user.authenticated", e.UserID.String(),
				"user_id", e.UserID,
				"at", e.At,
			)
		}
	}
	u.ClearEvents()
}
