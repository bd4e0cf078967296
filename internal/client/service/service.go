package service

import (
	"context"
	"errors"
	"time"

	clientmetrics "sigil/internal/client/metrics"
	"sigil/internal/client/models"
	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/secrets"
	"sigil/pkg/sentinel"
)

// Service orchestrates OAuth client registration and the redirect URI
// checks performed on the authorization path.
type Service struct {
	clients ClientStore
	orgs    OrgStore

	auditEmitter *auditEmitter
	metrics      *clientmetrics.Metrics
}

func New(clients ClientStore, orgs OrgStore, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		clients:      clients,
		orgs:         orgs,
		auditEmitter: newAuditEmitter(cfg.logger, cfg.auditPublisher),
		metrics:      cfg.metrics,
	}
}

// CreateClient registers an OAuth client under an organization, enforcing
// tenant quotas and per-tenant client ID uniqueness. For confidential
// clients the generated secret is returned in plaintext exactly once; only
// its hash is kept on the aggregate.
func (s *Service) CreateClient(ctx context.Context, cmd *CreateClientCommand) (*models.Client, string, error) {
	if err := cmd.Validate(); err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeValidation, "invalid client registration request")
	}

	org, err := s.orgs.FindByID(ctx, cmd.OrgID)
	if err != nil {
		return nil, "", wrapOrgErr(err, "failed to load organization")
	}
	if !org.IsActive() {
		return nil, "", dErrors.New(dErrors.CodeValidation, "cannot register client under inactive organization")
	}

	count, err := s.clients.CountByOrg(ctx, cmd.OrgID)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to count clients")
	}
	if count >= org.Settings.MaxClients {
		return nil, "", dErrors.New(dErrors.CodeValidation, "organization client limit reached")
	}

	redirectURIs, err := parseRedirectURIs(cmd.RedirectURIs)
	if err != nil {
		return nil, "", err
	}

	var (
		client    *models.Client
		plaintext string
	)
	if cmd.Confidential {
		plaintext, err = secrets.Generate()
		if err != nil {
			return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate client secret")
		}
		hash, hashErr := secrets.Hash(plaintext)
		if hashErr != nil {
			return nil, "", dErrors.Wrap(hashErr, dErrors.CodeInternal, "failed to hash client secret")
		}
		client, err = models.NewConfidentialClient(
			id.NewClientID(),
			cmd.OrgID,
			cmd.OwnerID,
			cmd.ClientID,
			cmd.DisplayName,
			models.SecretFromHash(hash),
			redirectURIs,
			cmd.Scopes,
			time.Now(),
		)
	} else {
		client, err = models.NewPublicClient(
			id.NewClientID(),
			cmd.OrgID,
			cmd.OwnerID,
			cmd.ClientID,
			cmd.DisplayName,
			redirectURIs,
			cmd.Scopes,
			time.Now(),
		)
	}
	if err != nil {
		return nil, "", err
	}

	if err := s.clients.Create(ctx, client); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, "", dErrors.New(dErrors.CodeConflict, "client ID already registered")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create client")
	}

	if s.metrics != nil {
		s.metrics.IncrementClientsCreated()
	}
	s.drainEvents(ctx, client)
	return client, plaintext, nil
}

// GetClient loads a client by its internal ID without tenant scoping.
// Reserved for operator tooling; tenant-facing reads go through
// GetClientForOrg.
func (s *Service) GetClient(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	if err := requireClientID(clientID); err != nil {
		return nil, err
	}
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, wrapClientErr(err, "failed to find client")
	}
	return client, nil
}

// GetClientForOrg loads a client scoped to an organization. A client
// belonging to another tenant is indistinguishable from a missing one.
func (s *Service) GetClientForOrg(ctx context.Context, orgID id.OrgID, clientID id.ClientID) (*models.Client, error) {
	if err := requireOrgID(orgID); err != nil {
		return nil, err
	}
	if err := requireClientID(clientID); err != nil {
		return nil, err
	}
	client, err := s.clients.FindByOrgAndID(ctx, orgID, clientID)
	if err != nil {
		return nil, wrapClientErr(err, "failed to find client")
	}
	return client, nil
}

// AddRedirectURI registers an additional redirect target on a client.
func (s *Service) AddRedirectURI(ctx context.Context, orgID id.OrgID, clientID id.ClientID, rawURI string) (*models.Client, error) {
	return s.mutate(ctx, orgID, clientID, "client.redirect_uri_added", func(c *models.Client) error {
		uri, err := models.NewRedirectURI(rawURI)
		if err != nil {
			return err
		}
		return c.AddRedirectURI(uri)
	})
}

// RemoveRedirectURI drops a registered redirect target. Fails if the URI is
// not currently registered.
func (s *Service) RemoveRedirectURI(ctx context.Context, orgID id.OrgID, clientID id.ClientID, rawURI string) (*models.Client, error) {
	return s.mutate(ctx, orgID, clientID, "client.redirect_uri_removed", func(c *models.Client) error {
		uri, err := models.NewRedirectURI(rawURI)
		if err != nil {
			return err
		}
		return c.RemoveRedirectURI(uri)
	})
}

// UpdateDisplayName renames a client.
func (s *Service) UpdateDisplayName(ctx context.Context, orgID id.OrgID, clientID id.ClientID, displayName string) (*models.Client, error) {
	return s.mutate(ctx, orgID, clientID, "client.renamed", func(c *models.Client) error {
		return c.UpdateDisplayName(displayName)
	})
}

// RotateSecret replaces a confidential client's secret and returns the new
// plaintext exactly once. Existing tokens are unaffected; only future
// client authentications use the new secret.
func (s *Service) RotateSecret(ctx context.Context, orgID id.OrgID, clientID id.ClientID) (string, error) {
	if err := requireOrgID(orgID); err != nil {
		return "", err
	}
	if err := requireClientID(clientID); err != nil {
		return "", err
	}

	client, err := s.clients.FindByOrgAndID(ctx, orgID, clientID)
	if err != nil {
		return "", wrapClientErr(err, "failed to find client")
	}

	plaintext, err := secrets.Generate()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate client secret")
	}
	hash, err := secrets.Hash(plaintext)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash client secret")
	}
	if err := client.RotateSecret(models.SecretFromHash(hash)); err != nil {
		return "", err
	}

	if err := s.clients.Update(ctx, client); err != nil {
		return "", wrapClientErr(err, "failed to update client")
	}

	if s.metrics != nil {
		s.metrics.IncrementSecretsRotated()
	}
	s.drainEvents(ctx, client)
	return plaintext, nil
}

// VerifyClientSecret checks a presented secret against a confidential
// client's stored hash. Public clients always fail the check.
func (s *Service) VerifyClientSecret(ctx context.Context, orgID id.OrgID, slug, presented string) (bool, error) {
	client, err := s.ResolveClient(ctx, orgID, slug)
	if err != nil {
		return false, err
	}
	secret, ok := client.Secret()
	if !ok {
		return false, nil
	}
	return secrets.Verify(presented, secret.Value()) == nil, nil
}

// AssignOrganization backfills a tenant onto a legacy unassigned client.
func (s *Service) AssignOrganization(ctx context.Context, clientID id.ClientID, orgID id.OrgID) (*models.Client, error) {
	if err := requireClientID(clientID); err != nil {
		return nil, err
	}
	if err := requireOrgID(orgID); err != nil {
		return nil, err
	}

	if _, err := s.orgs.FindByID(ctx, orgID); err != nil {
		return nil, wrapOrgErr(err, "failed to load organization")
	}

	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, wrapClientErr(err, "failed to find client")
	}
	if err := client.AssignOrganization(orgID); err != nil {
		return nil, err
	}
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, wrapClientErr(err, "failed to update client")
	}

	s.auditEmitter.emit(ctx, "client.organization_assigned", client.ID.String(),
		"id", client.ID,
		"org_id", orgID,
	)
	return client, nil
}

// DeleteClient removes a client from its organization.
func (s *Service) DeleteClient(ctx context.Context, orgID id.OrgID, clientID id.ClientID) error {
	if err := requireOrgID(orgID); err != nil {
		return err
	}
	if err := requireClientID(clientID); err != nil {
		return err
	}

	client, err := s.clients.FindByOrgAndID(ctx, orgID, clientID)
	if err != nil {
		return wrapClientErr(err, "failed to find client")
	}
	if err := s.clients.Delete(ctx, client.ID); err != nil {
		return wrapClientErr(err, "failed to delete client")
	}

	s.auditEmitter.emit(ctx, "client.deleted", client.ID.String(),
		"id", client.ID,
		"client_id", client.ClientID,
	)
	return nil
}

// mutate loads a tenant-scoped client, applies a change, and persists it,
// emitting a single audit event on success.
func (s *Service) mutate(ctx context.Context, orgID id.OrgID, clientID id.ClientID, event string, fn func(*models.Client) error) (*models.Client, error) {
	if err := requireOrgID(orgID); err != nil {
		return nil, err
	}
	if err := requireClientID(clientID); err != nil {
		return nil, err
	}

	client, err := s.clients.FindByOrgAndID(ctx, orgID, clientID)
	if err != nil {
		return nil, wrapClientErr(err, "failed to find client")
	}
	if err := fn(client); err != nil {
		return nil, err
	}
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, wrapClientErr(err, "failed to update client")
	}

	s.auditEmitter.emit(ctx, event, client.ID.String(),
		"id", client.ID,
		"client_id", client.ClientID,
	)
	return client, nil
}

func parseRedirectURIs(raw []string) ([]models.RedirectURI, error) {
	uris := make([]models.RedirectURI, 0, len(raw))
	for _, r := range raw {
		uri, err := models.NewRedirectURI(r)
		if err != nil {
			return nil, err
		}
		uris = append(uris, uri)
	}
	return uris, nil
}
