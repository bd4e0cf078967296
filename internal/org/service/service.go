package service

import (
	"context"
	"errors"
	"time"

	orgmetrics "sigil/internal/org/metrics"
	"sigil/internal/org/models"
	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/sentinel"
)

// Store interfaces define persistence contracts.

type OrgStore interface {
	CreateIfSubdomainAvailable(ctx context.Context, org *models.Organization) error
	Update(ctx context.Context, org *models.Organization) error
	FindByID(ctx context.Context, orgID id.OrgID) (*models.Organization, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*models.Organization, error)
}

// UserCounter and ClientCounter are read-only views of the other domains,
// used for admin dashboards and quota reporting.

type UserCounter interface {
	CountByOrg(ctx context.Context, orgID id.OrgID) (int, error)
}

type ClientCounter interface {
	CountByOrg(ctx context.Context, orgID id.OrgID) (int, error)
}

// Service orchestrates organization lifecycle management.
type Service struct {
	orgs    OrgStore
	users   UserCounter
	clients ClientCounter

	auditEmitter *auditEmitter
	metrics      *orgmetrics.Metrics
}

func New(orgs OrgStore, users UserCounter, clients ClientCounter, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		orgs:         orgs,
		users:        users,
		clients:      clients,
		auditEmitter: newAuditEmitter(cfg.logger, cfg.auditPublisher),
		metrics:      cfg.metrics,
	}
}

// CreateOrganization registers a new tenant. A nil settings pointer applies
// platform defaults.
func (s *Service) CreateOrganization(ctx context.Context, name, subdomain string, settings *models.Settings) (*models.Organization, error) {
	effective := models.DefaultSettings()
	if settings != nil {
		effective = *settings
	}

	org, err := models.NewOrganization(id.NewOrgID(), name, subdomain, effective, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.orgs.CreateIfSubdomainAvailable(ctx, org); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "subdomain already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create organization")
	}

	if s.metrics != nil {
		s.metrics.IncrementOrgsCreated()
	}
	s.drainEvents(ctx, org)
	return org, nil
}

// GetOrganization returns tenant metadata with user and client counts.
func (s *Service) GetOrganization(ctx context.Context, orgID id.OrgID) (*models.OrgDetails, error) {
	if err := requireOrgID(orgID); err != nil {
		return nil, err
	}
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return nil, wrapOrgErr(err, "failed to get organization")
	}

	userCount, err := s.users.CountByOrg(ctx, orgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count users")
	}
	clientCount, err := s.clients.CountByOrg(ctx, orgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count clients")
	}

	return &models.OrgDetails{
		Organization: org,
		UserCount:    userCount,
		ClientCount:  clientCount,
	}, nil
}

// GetOrganizationBySubdomain resolves the tenant for an incoming request host.
func (s *Service) GetOrganizationBySubdomain(ctx context.Context, subdomain string) (*models.Organization, error) {
	if subdomain == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subdomain required")
	}
	org, err := s.orgs.FindBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, wrapOrgErr(err, "failed to get organization")
	}
	return org, nil
}

// UpdateSettings replaces the per-tenant settings.
func (s *Service) UpdateSettings(ctx context.Context, orgID id.OrgID, settings models.Settings) (*models.Organization, error) {
	if err := requireOrgID(orgID); err != nil {
		return nil, err
	}
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return nil, wrapOrgErr(err, "failed to get organization")
	}
	if err := org.UpdateSettings(settings, time.Now()); err != nil {
		return nil, err
	}
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update organization")
	}
	s.drainEvents(ctx, org)
	return org, nil
}

// DeactivateOrganization suspends a tenant. Users can no longer log in and
// clients under it stop resolving.
func (s *Service) DeactivateOrganization(ctx context.Context, orgID id.OrgID) (*models.Organization, error) {
	return s.transition(ctx, orgID, (*models.Organization).Deactivate)
}

// ReactivateOrganization restores a suspended tenant.
func (s *Service) ReactivateOrganization(ctx context.Context, orgID id.OrgID) (*models.Organization, error) {
	return s.transition(ctx, orgID, (*models.Organization).Reactivate)
}

func (s *Service) transition(ctx context.Context, orgID id.OrgID, op func(*models.Organization, time.Time) error) (*models.Organization, error) {
	if err := requireOrgID(orgID); err != nil {
		return nil, err
	}
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		return nil, wrapOrgErr(err, "failed to get organization")
	}
	if err := op(org, time.Now()); err != nil {
		return nil, err
	}
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update organization")
	}
	s.drainEvents(ctx, org)
	return org, nil
}

func requireOrgID(orgID id.OrgID) error {
	if orgID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "organization ID required")
	}
	return nil
}

func wrapOrgErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "organization not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
