package user

import (
	"context"
	"sync"

	"sigil/internal/identity/models"
	id "sigil/pkg/domain"
	"sigil/pkg/sentinel"
)

type orgEmail struct {
	orgID id.OrgID
	email string
}

// InMemory stores users in memory for tests.
// Maintains a per-organization email index mirroring the database uniqueness
// constraint, and a tenant count index for quota checks.
type InMemory struct {
	mu       sync.RWMutex
	users    map[id.UserID]*models.User
	byEmail  map[orgEmail]id.UserID
	orgCount map[id.OrgID]int
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:    make(map[id.UserID]*models.User),
		byEmail:  make(map[orgEmail]id.UserID),
		orgCount: make(map[id.OrgID]int),
	}
}

// Create persists a new user. Returns sentinel.ErrAlreadyUsed when the email
// is already registered within the same organization.
func (s *InMemory) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := orgEmail{orgID: u.OrgID, email: u.Email.Value()}
	if _, taken := s.byEmail[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.users[u.ID] = copyUser(u)
	s.byEmail[key] = u.ID
	s.orgCount[u.OrgID]++
	return nil
}

// Update persists changes to an existing user. Re-indexes the organization
// assignment so the legacy backfill path keeps counts and email lookups
// consistent.
func (s *InMemory) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[u.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.OrgID != u.OrgID {
		key := orgEmail{orgID: u.OrgID, email: u.Email.Value()}
		if _, taken := s.byEmail[key]; taken {
			return sentinel.ErrAlreadyUsed
		}
		delete(s.byEmail, orgEmail{orgID: existing.OrgID, email: existing.Email.Value()})
		s.orgCount[existing.OrgID]--
		s.byEmail[key] = u.ID
		s.orgCount[u.OrgID]++
	}
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return copyUser(u), nil
	}
	return nil, sentinel.ErrNotFound
}

// FindByOrgAndID retrieves a user scoped to an organization.
// Returns sentinel.ErrNotFound when the user exists under a different tenant.
func (s *InMemory) FindByOrgAndID(_ context.Context, orgID id.OrgID, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok && u.OrgID == orgID {
		return copyUser(u), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByOrgAndEmail(_ context.Context, orgID id.OrgID, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if userID, ok := s.byEmail[orgEmail{orgID: orgID, email: email}]; ok {
		return copyUser(s.users[userID]), nil
	}
	return nil, sentinel.ErrNotFound
}

// copyUser returns a snapshot so callers mutate their own instance and
// Update can diff the stored one for re-indexing.
func copyUser(u *models.User) *models.User {
	cp := *u
	// Pending domain events belong to the unit of work, not the stored record.
	cp.ClearEvents()
	return &cp
}

func (s *InMemory) CountByOrg(_ context.Context, orgID id.OrgID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orgCount[orgID], nil
}

func (s *InMemory) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.users, userID)
	delete(s.byEmail, orgEmail{orgID: u.OrgID, email: u.Email.Value()})
	s.orgCount[u.OrgID]--
	return nil
}
