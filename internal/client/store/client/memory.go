package client

import (
	"context"
	"sync"

	"sigil/internal/client/models"
	id "sigil/pkg/domain"
	"sigil/pkg/sentinel"
)

type orgSlug struct {
	orgID id.OrgID
	slug  string
}

// InMemory stores clients in memory for tests.
// Maintains a per-organization slug index mirroring the database uniqueness
// constraint, and a tenant count index for quota checks.
type InMemory struct {
	mu       sync.RWMutex
	clients  map[id.ClientID]*models.Client
	bySlug   map[orgSlug]id.ClientID
	orgCount map[id.OrgID]int
}

func NewInMemory() *InMemory {
	return &InMemory{
		clients:  make(map[id.ClientID]*models.Client),
		bySlug:   make(map[orgSlug]id.ClientID),
		orgCount: make(map[id.OrgID]int),
	}
}

// Create persists a new client. Returns sentinel.ErrAlreadyUsed when the
// client_id slug is already registered within the same organization.
func (s *InMemory) Create(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := orgSlug{orgID: c.OrgID, slug: c.ClientID}
	if _, taken := s.bySlug[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.clients[c.ID] = copyClient(c)
	s.bySlug[key] = c.ID
	s.orgCount[c.OrgID]++
	return nil
}

// Update persists changes to an existing client. Re-indexes the organization
// assignment so the legacy backfill path keeps counts and slug lookups
// consistent.
func (s *InMemory) Update(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.clients[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.OrgID != c.OrgID {
		key := orgSlug{orgID: c.OrgID, slug: c.ClientID}
		if _, taken := s.bySlug[key]; taken {
			return sentinel.ErrAlreadyUsed
		}
		delete(s.bySlug, orgSlug{orgID: existing.OrgID, slug: existing.ClientID})
		s.orgCount[existing.OrgID]--
		s.bySlug[key] = c.ID
		s.orgCount[c.OrgID]++
	}
	s.clients[c.ID] = copyClient(c)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, clientID id.ClientID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.clients[clientID]; ok {
		return copyClient(c), nil
	}
	return nil, sentinel.ErrNotFound
}

// FindByOrgAndID retrieves a client scoped to an organization.
// Returns sentinel.ErrNotFound when the client exists under a different tenant.
func (s *InMemory) FindByOrgAndID(_ context.Context, orgID id.OrgID, clientID id.ClientID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.clients[clientID]; ok && c.OrgID == orgID {
		return copyClient(c), nil
	}
	return nil, sentinel.ErrNotFound
}

// FindByOrgAndClientID retrieves a client by its slug within an organization.
// This is the lookup the authorization flow uses after resolving the tenant
// from the request subdomain.
func (s *InMemory) FindByOrgAndClientID(_ context.Context, orgID id.OrgID, slug string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if clientID, ok := s.bySlug[orgSlug{orgID: orgID, slug: slug}]; ok {
		return copyClient(s.clients[clientID]), nil
	}
	return nil, sentinel.ErrNotFound
}

// copyClient returns a detached snapshot so callers mutate their own
// instance and Update can diff the stored one for re-indexing.
func copyClient(c *models.Client) *models.Client {
	secretHash := ""
	if secret, ok := c.Secret(); ok {
		secretHash = secret.Value()
	}
	return models.Rehydrate(
		c.ID, c.OrgID, c.OwnerID,
		c.ClientID, c.DisplayName, c.Type, secretHash,
		c.RedirectURIValues(), c.AllowedScopes(), c.CreatedAt,
	)
}

func (s *InMemory) CountByOrg(_ context.Context, orgID id.OrgID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orgCount[orgID], nil
}

func (s *InMemory) Delete(_ context.Context, clientID id.ClientID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.clients, clientID)
	delete(s.bySlug, orgSlug{orgID: c.OrgID, slug: c.ClientID})
	s.orgCount[c.OrgID]--
	return nil
}
