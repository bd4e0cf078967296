package organization

import (
	"context"
	"sync"

	"sigil/internal/org/models"
	id "sigil/pkg/domain"
	"sigil/pkg/sentinel"
)

// InMemory stores organizations in memory for tests.
// Maintains a subdomain index to mirror the database uniqueness constraint.
type InMemory struct {
	mu          sync.RWMutex
	orgs        map[id.OrgID]*models.Organization
	bySubdomain map[string]id.OrgID
}

func NewInMemory() *InMemory {
	return &InMemory{
		orgs:        make(map[id.OrgID]*models.Organization),
		bySubdomain: make(map[string]id.OrgID),
	}
}

// CreateIfSubdomainAvailable atomically checks subdomain uniqueness and
// persists the organization. Returns sentinel.ErrAlreadyUsed when the
// subdomain is taken.
func (s *InMemory) CreateIfSubdomainAvailable(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.bySubdomain[org.Subdomain]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.orgs[org.ID] = copyOrg(org)
	s.bySubdomain[org.Subdomain] = org.ID
	return nil
}

func (s *InMemory) Update(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[org.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.orgs[org.ID] = copyOrg(org)
	s.bySubdomain[org.Subdomain] = org.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, orgID id.OrgID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if org, ok := s.orgs[orgID]; ok {
		return copyOrg(org), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindBySubdomain(_ context.Context, subdomain string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if orgID, ok := s.bySubdomain[subdomain]; ok {
		return copyOrg(s.orgs[orgID]), nil
	}
	return nil, sentinel.ErrNotFound
}

// copyOrg returns a detached snapshot. Pending domain events belong to the
// unit of work, not the stored record.
func copyOrg(org *models.Organization) *models.Organization {
	cp := *org
	cp.ClearEvents()
	return &cp
}
