package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	usermodels "sigil/internal/identity/models"
	userstore "sigil/internal/identity/store/user"
	"sigil/internal/org/models"
	orgstore "sigil/internal/org/store/organization"
	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
)

// OrgServiceSuite tests tenant lifecycle management against in-memory stores.
type OrgServiceSuite struct {
	suite.Suite

	ctx   context.Context
	orgs  *orgstore.InMemory
	users *userstore.InMemory
	svc   *Service
}

func TestOrgServiceSuite(t *testing.T) {
	suite.Run(t, new(OrgServiceSuite))
}

type staticCounter int

func (c staticCounter) CountByOrg(context.Context, id.OrgID) (int, error) {
	return int(c), nil
}

func (s *OrgServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.orgs = orgstore.NewInMemory()
	s.users = userstore.NewInMemory()
	s.svc = New(s.orgs, s.users, staticCounter(3))
}

func (s *OrgServiceSuite) TestCreateOrganization() {
	s.Run("defaults apply when no settings are given", func() {
		org, err := s.svc.CreateOrganization(s.ctx, "Acme", "acme", nil)
		s.Require().NoError(err)
		s.Equal(models.DefaultSettings(), org.Settings)
		s.True(org.IsActive())
		s.Empty(org.Events(), "events are drained after the unit of work")
	})

	s.Run("explicit settings are honored", func() {
		settings := models.DefaultSettings()
		settings.MaxUsers = 200
		org, err := s.svc.CreateOrganization(s.ctx, "Globex", "globex", &settings)
		s.Require().NoError(err)
		s.Equal(200, org.Settings.MaxUsers)
	})

	s.Run("duplicate subdomain conflicts", func() {
		_, err := s.svc.CreateOrganization(s.ctx, "Other Acme", "acme", nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "subdomain already taken")
	})

	s.Run("invalid subdomain is rejected before storage", func() {
		_, err := s.svc.CreateOrganization(s.ctx, "Bad", "Not-Valid-", nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *OrgServiceSuite) TestGetOrganization() {
	org, err := s.svc.CreateOrganization(s.ctx, "Acme", "acme", nil)
	s.Require().NoError(err)

	email, err := usermodels.NewEmail("member@example.com")
	s.Require().NoError(err)
	member, err := usermodels.NewUser(id.NewUserID(), org.ID, email, "hash", "Mia", "Torres", false, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(s.ctx, member))

	s.Run("details include counts", func() {
		details, err := s.svc.GetOrganization(s.ctx, org.ID)
		s.Require().NoError(err)
		s.Equal(org.ID, details.Organization.ID)
		s.Equal(1, details.UserCount)
		s.Equal(3, details.ClientCount)
	})

	s.Run("unknown organization", func() {
		_, err := s.svc.GetOrganization(s.ctx, id.NewOrgID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("nil organization ID", func() {
		_, err := s.svc.GetOrganization(s.ctx, id.OrgID{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("lookup by subdomain", func() {
		found, err := s.svc.GetOrganizationBySubdomain(s.ctx, "acme")
		s.Require().NoError(err)
		s.Equal(org.ID, found.ID)

		_, err = s.svc.GetOrganizationBySubdomain(s.ctx, "missing")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *OrgServiceSuite) TestUpdateSettings() {
	org, err := s.svc.CreateOrganization(s.ctx, "Acme", "acme", nil)
	s.Require().NoError(err)

	settings := models.DefaultSettings()
	settings.SessionTimeout = time.Hour
	updated, err := s.svc.UpdateSettings(s.ctx, org.ID, settings)
	s.Require().NoError(err)
	s.Equal(time.Hour, updated.Settings.SessionTimeout)

	// Invalid settings never reach storage.
	settings.MaxUsers = 0
	_, err = s.svc.UpdateSettings(s.ctx, org.ID, settings)
	s.Require().Error(err)

	details, err := s.svc.GetOrganization(s.ctx, org.ID)
	s.Require().NoError(err)
	s.Equal(time.Hour, details.Organization.Settings.SessionTimeout)
}

func (s *OrgServiceSuite) TestLifecycle() {
	org, err := s.svc.CreateOrganization(s.ctx, "Acme", "acme", nil)
	s.Require().NoError(err)

	deactivated, err := s.svc.DeactivateOrganization(s.ctx, org.ID)
	s.Require().NoError(err)
	s.False(deactivated.IsActive())

	_, err = s.svc.DeactivateOrganization(s.ctx, org.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	reactivated, err := s.svc.ReactivateOrganization(s.ctx, org.ID)
	s.Require().NoError(err)
	s.True(reactivated.IsActive())

	_, err = s.svc.ReactivateOrganization(s.ctx, org.ID)
	s.Require().Error(err)
}
